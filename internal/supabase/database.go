package supabase

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"kilnlog-backend/internal/core"
)

// DatabaseClient talks to the hosted Postgres directly. Every query is
// scoped by the owning user id; authorization is enforced here, not in the
// domain logic.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) CreatePiece(p *core.Piece) error {
	stageHistory, history, photos, err := marshalPieceJSON(p)
	if err != nil {
		return err
	}

	err = d.db.QueryRow(`
		INSERT INTO pieces (id, user_id, title, current_stage, stage_history, history, next_step, next_reminder_at, photos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.Title, string(p.CurrentStage), stageHistory, history,
		p.NextStep, p.NextReminderAt, photos).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create piece: %w", err)
	}

	return nil
}

// FindPiece returns (nil, nil) when no piece with that id belongs to the
// user, so callers can distinguish absence from a query failure.
func (d *DatabaseClient) FindPiece(pieceID, userID uuid.UUID) (*core.Piece, error) {
	row := d.db.QueryRow(`
		SELECT id, user_id, title, current_stage, stage_history, history, next_step, next_reminder_at, photos, created_at, updated_at
		FROM pieces
		WHERE id = $1 AND user_id = $2
	`, pieceID, userID)

	piece, err := scanPiece(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get piece: %w", err)
	}
	return piece, nil
}

func (d *DatabaseClient) ListPieces(userID uuid.UUID) ([]core.Piece, error) {
	rows, err := d.db.Query(`
		SELECT id, user_id, title, current_stage, stage_history, history, next_step, next_reminder_at, photos, created_at, updated_at
		FROM pieces
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pieces: %w", err)
	}
	defer rows.Close()

	var pieces []core.Piece
	for rows.Next() {
		piece, err := scanPiece(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan piece: %w", err)
		}
		pieces = append(pieces, *piece)
	}

	return pieces, nil
}

func (d *DatabaseClient) UpdatePiece(p *core.Piece) error {
	stageHistory, history, photos, err := marshalPieceJSON(p)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		UPDATE pieces
		SET title = $1, current_stage = $2, stage_history = $3, history = $4,
		    next_step = $5, next_reminder_at = $6, photos = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9
	`, p.Title, string(p.CurrentStage), stageHistory, history,
		p.NextStep, p.NextReminderAt, photos, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to update piece: %w", err)
	}
	return nil
}

// AppendPieceEvent appends one entry to the piece's history log without
// touching any other column.
func (d *DatabaseClient) AppendPieceEvent(pieceID, userID uuid.UUID, event core.Event) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	_, err = d.db.Exec(`
		UPDATE pieces
		SET history = history || $1::jsonb, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, string(eventJSON), pieceID, userID)
	if err != nil {
		return fmt.Errorf("failed to append piece event: %w", err)
	}
	return nil
}

func (d *DatabaseClient) UpdatePiecePhotos(pieceID, userID uuid.UUID, photos []string) error {
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return fmt.Errorf("failed to encode photos: %w", err)
	}

	_, err = d.db.Exec(`
		UPDATE pieces
		SET photos = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, photosJSON, pieceID, userID)
	if err != nil {
		return fmt.Errorf("failed to update piece photos: %w", err)
	}
	return nil
}

func (d *DatabaseClient) CreateInspiration(i *core.Inspiration) error {
	if i.Tags == nil {
		i.Tags = []string{}
	}
	if i.Photos == nil {
		i.Photos = []string{}
	}

	tags, err := json.Marshal(i.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	photos, err := json.Marshal(i.Photos)
	if err != nil {
		return fmt.Errorf("failed to encode photos: %w", err)
	}

	err = d.db.QueryRow(`
		INSERT INTO inspirations (id, user_id, note, tags, photos, link_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, i.ID, i.UserID, i.Note, tags, photos, i.LinkURL).Scan(&i.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create inspiration: %w", err)
	}

	return nil
}

func (d *DatabaseClient) FindInspiration(inspirationID, userID uuid.UUID) (*core.Inspiration, error) {
	row := d.db.QueryRow(`
		SELECT id, user_id, note, tags, photos, link_url, created_at
		FROM inspirations
		WHERE id = $1 AND user_id = $2
	`, inspirationID, userID)

	inspiration, err := scanInspiration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inspiration: %w", err)
	}
	return inspiration, nil
}

func (d *DatabaseClient) ListInspirations(userID uuid.UUID) ([]core.Inspiration, error) {
	rows, err := d.db.Query(`
		SELECT id, user_id, note, tags, photos, link_url, created_at
		FROM inspirations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspirations: %w", err)
	}
	defer rows.Close()

	var inspirations []core.Inspiration
	for rows.Next() {
		inspiration, err := scanInspiration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspiration: %w", err)
		}
		inspirations = append(inspirations, *inspiration)
	}

	return inspirations, nil
}

func (d *DatabaseClient) UpdateInspirationPhotos(inspirationID, userID uuid.UUID, photos []string) error {
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return fmt.Errorf("failed to encode photos: %w", err)
	}

	_, err = d.db.Exec(`
		UPDATE inspirations
		SET photos = $1
		WHERE id = $2 AND user_id = $3
	`, photosJSON, inspirationID, userID)
	if err != nil {
		return fmt.Errorf("failed to update inspiration photos: %w", err)
	}
	return nil
}

// AddLink creates the (piece, inspiration) association. Re-adding an
// existing pair is a success; the unique constraint plus ON CONFLICT DO
// NOTHING keeps at most one row per pair.
func (d *DatabaseClient) AddLink(pieceID, inspirationID, userID uuid.UUID) error {
	_, err := d.db.Exec(`
		INSERT INTO piece_inspiration_links (piece_id, inspiration_id, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (piece_id, inspiration_id) DO NOTHING
	`, pieceID, inspirationID, userID)
	if err != nil {
		return fmt.Errorf("failed to add link: %w", err)
	}
	return nil
}

// RemoveLink deletes the pair. Removing a pair that does not exist is a
// no-op, not an error.
func (d *DatabaseClient) RemoveLink(pieceID, inspirationID, userID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM piece_inspiration_links
		WHERE piece_id = $1 AND inspiration_id = $2 AND user_id = $3
	`, pieceID, inspirationID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove link: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListLinkedInspirationIDs(pieceID, userID uuid.UUID) ([]uuid.UUID, error) {
	return d.listLinkIDs(`
		SELECT inspiration_id FROM piece_inspiration_links
		WHERE piece_id = $1 AND user_id = $2
		ORDER BY created_at ASC
	`, pieceID, userID)
}

func (d *DatabaseClient) ListLinkedPieceIDs(inspirationID, userID uuid.UUID) ([]uuid.UUID, error) {
	return d.listLinkIDs(`
		SELECT piece_id FROM piece_inspiration_links
		WHERE inspiration_id = $1 AND user_id = $2
		ORDER BY created_at ASC
	`, inspirationID, userID)
}

func (d *DatabaseClient) listLinkIDs(query string, anchorID, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := d.db.Query(query, anchorID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPiece(row rowScanner) (*core.Piece, error) {
	var (
		piece        core.Piece
		currentStage string
		stageHistory []byte
		history      []byte
		photos       []byte
		nextStep     sql.NullString
		nextReminder sql.NullTime
	)

	err := row.Scan(&piece.ID, &piece.UserID, &piece.Title, &currentStage,
		&stageHistory, &history, &nextStep, &nextReminder, &photos,
		&piece.CreatedAt, &piece.UpdatedAt)
	if err != nil {
		return nil, err
	}

	piece.CurrentStage = core.Stage(currentStage)
	if nextStep.Valid {
		piece.NextStep = &nextStep.String
	}
	if nextReminder.Valid {
		t := nextReminder.Time
		piece.NextReminderAt = &t
	}
	if err := json.Unmarshal(stageHistory, &piece.StageHistory); err != nil {
		return nil, fmt.Errorf("failed to decode stage history: %w", err)
	}
	if err := json.Unmarshal(history, &piece.History); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if err := json.Unmarshal(photos, &piece.Photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos: %w", err)
	}

	return &piece, nil
}

func scanInspiration(row rowScanner) (*core.Inspiration, error) {
	var (
		inspiration core.Inspiration
		tags        []byte
		photos      []byte
		linkURL     sql.NullString
	)

	err := row.Scan(&inspiration.ID, &inspiration.UserID, &inspiration.Note,
		&tags, &photos, &linkURL, &inspiration.CreatedAt)
	if err != nil {
		return nil, err
	}

	if linkURL.Valid {
		inspiration.LinkURL = linkURL.String
	}
	if err := json.Unmarshal(tags, &inspiration.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal(photos, &inspiration.Photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos: %w", err)
	}

	return &inspiration, nil
}

func marshalPieceJSON(p *core.Piece) (stageHistory, history, photos []byte, err error) {
	if p.StageHistory == nil {
		p.StageHistory = []core.StageRecord{}
	}
	if p.History == nil {
		p.History = []core.Event{}
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}

	if stageHistory, err = json.Marshal(p.StageHistory); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode stage history: %w", err)
	}
	if history, err = json.Marshal(p.History); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode history: %w", err)
	}
	if photos, err = json.Marshal(p.Photos); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode photos: %w", err)
	}
	return stageHistory, history, photos, nil
}
