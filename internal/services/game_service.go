package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"questlog/backend/internal/hub"
	"questlog/backend/internal/models"
	"questlog/backend/internal/rawg"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog is the part of the RAWG client the workflow needs.
type Catalog interface {
	GetGame(ctx context.Context, slug string) (*rawg.Game, error)
}

// Publisher receives review-queue events.
type Publisher interface {
	Broadcast(topic string, event hub.Event)
}

// SubmitOutcome tells the caller which branch Submit took.
type SubmitOutcome string

const (
	OutcomeContributorAdded SubmitOutcome = "contributor_added"
	OutcomeAlreadyPending   SubmitOutcome = "already_pending"
	OutcomeSubmitted        SubmitOutcome = "submitted"
)

// Review-queue event types.
const (
	EventGameSubmitted = "game_submitted"
	EventGameApproved  = "game_approved"
	EventGameRejected  = "game_rejected"
	EventGameAdded     = "game_added"
)

const (
	rejectedDuplicateNote = "Game already exists in database"
	defaultRejectNote     = "Rejected by admin"
)

// editableFields is the allow-list applied by Edit. Any other key is ignored.
var editableFields = []string{
	"name", "slug", "description", "background_image",
	"genres", "platforms", "rating", "released", "website",
}

// GameData is a game as submitted by a client, in RAWG's field naming.
type GameData struct {
	ID              int             `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	BackgroundImage string          `json:"background_image"`
	Genres          json.RawMessage `json:"genres"`
	Platforms       json.RawMessage `json:"platforms"`
	Rating          float64         `json:"rating"`
	Released        string          `json:"released"`
	Website         string          `json:"website"`
}

func (d GameData) validate() error {
	if d.ID == 0 || strings.TrimSpace(d.Slug) == "" || strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.BackgroundImage) == "" {
		return newError(ErrValidation, "Missing required game fields")
	}
	return nil
}

// DirectAddResult reports whether DirectAdd created the game.
type DirectAddResult struct {
	Game    *models.Game
	Created bool
}

// Record is either a pending submission or an approved game.
type Record struct {
	Pending *models.PendingGame
	Game    *models.Game
}

// GameService implements the submission and approval workflow.
// Approved games are always consulted before pending submissions.
type GameService struct {
	db        *gorm.DB
	catalog   Catalog
	publisher Publisher
	now       func() time.Time
}

// NewGameService creates a GameService. publisher may be nil.
func NewGameService(db *gorm.DB, catalog Catalog, publisher Publisher) *GameService {
	return &GameService{db: db, catalog: catalog, publisher: publisher, now: time.Now}
}

// region --- Workflow ---

// Submit proposes a game for admin review, or credits the user on an
// already approved game.
func (s *GameService) Submit(ctx context.Context, data GameData, username string) (SubmitOutcome, error) {
	if err := data.validate(); err != nil {
		return "", err
	}
	db := s.db.WithContext(ctx)

	game, err := findGameByCatalogID(db, data.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("find game %d: %w", data.ID, err)
	}
	if game != nil {
		if err := addContributor(db, game.ID, username); err != nil {
			return "", err
		}
		return OutcomeContributorAdded, nil
	}

	open, err := hasOpenSubmission(db, data.ID)
	if err != nil {
		return "", err
	}
	if open {
		return OutcomeAlreadyPending, nil
	}

	pending := models.PendingGame{
		CatalogID:       data.ID,
		Slug:            data.Slug,
		Name:            data.Name,
		Description:     data.Description,
		BackgroundImage: data.BackgroundImage,
		Genres:          jsonList(data.Genres),
		Platforms:       jsonList(data.Platforms),
		Rating:          data.Rating,
		Released:        data.Released,
		Website:         data.Website,
		SubmittedBy:     username,
		SubmittedAt:     s.now(),
		Status:          models.StatusPending,
	}
	if err := db.Create(&pending).Error; err != nil {
		// A concurrent submitter won the partial unique index.
		if open, checkErr := hasOpenSubmission(db, data.ID); checkErr == nil && open {
			return OutcomeAlreadyPending, nil
		}
		return "", fmt.Errorf("create pending game: %w", err)
	}

	s.publish(EventGameSubmitted, pendingEventPayloadOf(pending))
	return OutcomeSubmitted, nil
}

// DirectAdd fetches a game from the catalog and approves it immediately.
func (s *GameService) DirectAdd(ctx context.Context, gameName, username string) (*DirectAddResult, error) {
	gameName = strings.TrimSpace(gameName)
	if gameName == "" {
		return nil, newError(ErrValidation, "Game name is required")
	}

	data, err := s.catalog.GetGame(ctx, gameName)
	if err != nil {
		logrus.WithError(err).WithField("game", gameName).Warn("direct add: catalog fetch failed")
		return nil, newError(ErrUpstream, "Failed to fetch game")
	}

	db := s.db.WithContext(ctx)
	existing, err := s.creditExisting(db, data.ID, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &DirectAddResult{Game: existing}, nil
	}

	game := models.Game{
		CatalogID:       data.ID,
		Slug:            data.Slug,
		Name:            data.Name,
		Description:     data.PlainDescription(),
		BackgroundImage: data.BackgroundImage,
		Genres:          jsonList(data.Genres),
		Platforms:       jsonList(data.Platforms),
		Rating:          data.Rating,
		Released:        data.Released,
		Website:         data.Website,
		AddedAt:         s.now(),
		Contributors:    []models.GameContributor{{Username: username}},
	}
	if err := db.Create(&game).Error; err != nil {
		// Lost a race with an approval of the same catalog id.
		if existing, credErr := s.creditExisting(db, data.ID, username); credErr == nil && existing != nil {
			return &DirectAddResult{Game: existing}, nil
		}
		return nil, fmt.Errorf("create game: %w", err)
	}

	s.publish(EventGameAdded, gameEventPayload(game))
	return &DirectAddResult{Game: &game, Created: true}, nil
}

// Approve copies a pending submission into the games table. Both writes
// happen in one transaction. If the catalog id was approved in the meantime
// the submission is rejected instead and ErrConflict is returned.
func (s *GameService) Approve(ctx context.Context, pendingID uuid.UUID) (*models.Game, error) {
	var (
		game     models.Game
		pending  models.PendingGame
		conflict bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", pendingID).First(&pending).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotFound, "Pending game not found")
			}
			return fmt.Errorf("find pending game: %w", err)
		}
		if pending.Status != models.StatusPending {
			return newError(ErrConflict, "Game is not pending approval")
		}

		existing, err := findGameByCatalogID(tx, pending.CatalogID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find game %d: %w", pending.CatalogID, err)
		}
		if existing != nil {
			conflict = true
			return rejectDuplicate(tx, &pending)
		}

		game = models.Game{
			CatalogID:       pending.CatalogID,
			Slug:            pending.Slug,
			Name:            pending.Name,
			Description:     pending.Description,
			BackgroundImage: pending.BackgroundImage,
			Genres:          pending.Genres,
			Platforms:       pending.Platforms,
			Rating:          pending.Rating,
			Released:        pending.Released,
			Website:         pending.Website,
			AddedAt:         s.now(),
			Contributors:    []models.GameContributor{{Username: pending.SubmittedBy}},
		}
		if err := tx.Create(&game).Error; err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		return tx.Model(&pending).Update("status", models.StatusApproved).Error
	})

	// A concurrent approval or direct add inserted the catalog id after the
	// lookup. The transaction is gone, so the rejection gets its own.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return rejectDuplicate(tx, &pending)
		})
		if err == nil {
			conflict = true
		}
	}
	if err != nil {
		return nil, err
	}

	if conflict {
		pending.Status = models.StatusRejected
		pending.AdminNotes = rejectedDuplicateNote
		s.publish(EventGameRejected, pendingEventPayloadOf(pending))
		return nil, newError(ErrConflict, rejectedDuplicateNote)
	}

	pending.Status = models.StatusApproved
	s.publish(EventGameApproved, pendingEventPayloadOf(pending))
	return &game, nil
}

// Reject closes a submission with the given notes, or a default note.
func (s *GameService) Reject(ctx context.Context, pendingID uuid.UUID, notes string) (*models.PendingGame, error) {
	db := s.db.WithContext(ctx)

	var pending models.PendingGame
	if err := db.Where("id = ?", pendingID).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Pending game not found")
		}
		return nil, fmt.Errorf("find pending game: %w", err)
	}

	if strings.TrimSpace(notes) == "" {
		notes = defaultRejectNote
	}
	err := db.Model(&pending).Updates(map[string]interface{}{
		"status":      models.StatusRejected,
		"admin_notes": notes,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("reject pending game: %w", err)
	}

	pending.Status = models.StatusRejected
	pending.AdminNotes = notes
	s.publish(EventGameRejected, pendingEventPayloadOf(pending))
	return &pending, nil
}

// Edit updates the allow-listed fields of a pending submission, or of an
// approved game when no submission has that id. Status is never changed.
func (s *GameService) Edit(ctx context.Context, id uuid.UUID, fields map[string]json.RawMessage) (*Record, error) {
	if fields == nil {
		return nil, newError(ErrValidation, "Updated game data is required")
	}
	updates, err := editUpdates(fields)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var pending models.PendingGame
	err = db.Where("id = ?", id).First(&pending).Error
	if err == nil {
		if len(updates) > 0 {
			if err := db.Model(&pending).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("update pending game: %w", err)
			}
		}
		if err := db.Where("id = ?", id).First(&pending).Error; err != nil {
			return nil, fmt.Errorf("reload pending game: %w", err)
		}
		return &Record{Pending: &pending}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find pending game: %w", err)
	}

	var game models.Game
	if err := db.Where("id = ?", id).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Game not found")
		}
		return nil, fmt.Errorf("find game: %w", err)
	}
	if len(updates) > 0 {
		if err := db.Model(&game).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update game: %w", err)
		}
	}
	if err := preloadContributors(db).Where("id = ?", id).First(&game).Error; err != nil {
		return nil, fmt.Errorf("reload game: %w", err)
	}
	return &Record{Game: &game}, nil
}

// endregion

// region --- Queries ---

// ListPending returns open submissions, newest first.
func (s *GameService) ListPending(ctx context.Context) ([]models.PendingGame, error) {
	var pending []models.PendingGame
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("submitted_at DESC").Order("id DESC").
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("list pending games: %w", err)
	}
	return pending, nil
}

// Suggested returns every approved game, most recently added first.
func (s *GameService) Suggested(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := preloadContributors(s.db.WithContext(ctx)).
		Order("added_at DESC").Order("id DESC").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// ContributedBy returns the approved games crediting username.
func (s *GameService) ContributedBy(ctx context.Context, username string) ([]models.Game, error) {
	var games []models.Game
	err := preloadContributors(s.db.WithContext(ctx)).
		Where("id IN (?)", s.db.WithContext(ctx).Model(&models.GameContributor{}).Select("game_id").Where("username = ?", username)).
		Order("added_at DESC").Order("id DESC").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("list games for %s: %w", username, err)
	}
	return games, nil
}

// Details finds an approved game by slug, falling back to submissions.
func (s *GameService) Details(ctx context.Context, slug string) (*Record, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, newError(ErrValidation, "Slug is required")
	}
	db := s.db.WithContext(ctx)

	var game models.Game
	err := preloadContributors(db).Where("slug = ?", slug).First(&game).Error
	if err == nil {
		return &Record{Game: &game}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find game by slug: %w", err)
	}

	var pending models.PendingGame
	err = db.Where("slug = ?", slug).Order("submitted_at DESC").First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Game not found in database")
	}
	if err != nil {
		return nil, fmt.Errorf("find pending game by slug: %w", err)
	}
	return &Record{Pending: &pending}, nil
}

// Browse pages through approved games, optionally filtered by name.
func (s *GameService) Browse(ctx context.Context, query string, page, limit int) ([]models.Game, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Game{})
	if q := strings.TrimSpace(query); q != "" {
		base = base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	var games []models.Game
	err := preloadContributors(base.Session(&gorm.Session{})).
		Order("added_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&games).Error
	if err != nil {
		return nil, 0, fmt.Errorf("browse games: %w", err)
	}
	return games, total, nil
}

// endregion

// region --- Helpers ---

func (s *GameService) creditExisting(db *gorm.DB, catalogID int, username string) (*models.Game, error) {
	game, err := findGameByCatalogID(db, catalogID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game %d: %w", catalogID, err)
	}
	if !game.HasContributor(username) {
		if err := addContributor(db, game.ID, username); err != nil {
			return nil, err
		}
		game.Contributors = append(game.Contributors, models.GameContributor{GameID: game.ID, Username: username})
	}
	return game, nil
}

func (s *GameService) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Broadcast(hub.AdminTopic, hub.Event{Type: eventType, Payload: payload})
}

func preloadContributors(db *gorm.DB) *gorm.DB {
	return db.Preload("Contributors", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

func findGameByCatalogID(db *gorm.DB, catalogID int) (*models.Game, error) {
	var game models.Game
	if err := preloadContributors(db).Where("catalog_id = ?", catalogID).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// addContributor is idempotent: the composite key swallows repeats.
func addContributor(db *gorm.DB, gameID uuid.UUID, username string) error {
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.GameContributor{GameID: gameID, Username: username}).Error
	if err != nil {
		return fmt.Errorf("add contributor: %w", err)
	}
	return nil
}

// rejectDuplicate closes a submission whose catalog id is already approved.
// Only a still-pending row is touched.
func rejectDuplicate(db *gorm.DB, pending *models.PendingGame) error {
	err := db.Model(&models.PendingGame{}).
		Where("id = ? AND status = ?", pending.ID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      models.StatusRejected,
			"admin_notes": rejectedDuplicateNote,
		}).Error
	if err != nil {
		return fmt.Errorf("reject duplicate submission: %w", err)
	}
	return nil
}

func hasOpenSubmission(db *gorm.DB, catalogID int) (bool, error) {
	var count int64
	err := db.Model(&models.PendingGame{}).
		Where("catalog_id = ? AND status = ?", catalogID, models.StatusPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check pending game %d: %w", catalogID, err)
	}
	return count > 0, nil
}

func editUpdates(fields map[string]json.RawMessage) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	for _, name := range editableFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		switch name {
		case "genres", "platforms":
			var list []json.RawMessage
			if isNull(raw) || json.Unmarshal(raw, &list) != nil {
				return nil, newError(ErrValidation, fmt.Sprintf("%s must be a list", name))
			}
			updates[name] = jsonList(raw)
		case "rating":
			var rating float64
			if isNull(raw) || json.Unmarshal(raw, &rating) != nil {
				return nil, newError(ErrValidation, "Invalid value for rating")
			}
			updates[name] = rating
		default:
			var value string
			if isNull(raw) || json.Unmarshal(raw, &value) != nil {
				return nil, newError(ErrValidation, fmt.Sprintf("Invalid value for %s", name))
			}
			updates[name] = value
		}
	}
	return updates, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func jsonList(raw json.RawMessage) datatypes.JSON {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(trimmed)
}

type pendingEventPayload struct {
	ID          uuid.UUID `json:"_id"`
	CatalogID   int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	SubmittedBy string    `json:"submittedBy"`
	Status      string    `json:"status"`
	AdminNotes  string    `json:"adminNotes,omitempty"`
}

func pendingEventPayloadOf(p models.PendingGame) pendingEventPayload {
	return pendingEventPayload{
		ID:          p.ID,
		CatalogID:   p.CatalogID,
		Name:        p.Name,
		Slug:        p.Slug,
		SubmittedBy: p.SubmittedBy,
		Status:      string(p.Status),
		AdminNotes:  p.AdminNotes,
	}
}

func gameEventPayload(g models.Game) map[string]interface{} {
	return map[string]interface{}{
		"_id":     g.ID,
		"id":      g.CatalogID,
		"name":    g.Name,
		"slug":    g.Slug,
		"addedBy": g.Usernames(),
	}
}

// endregion
