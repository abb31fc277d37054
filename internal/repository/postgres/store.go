package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	"writersuite/internal/domain/repositories"
	repo "writersuite/internal/domain/repositories/workspace"
	"writersuite/internal/repository/events"
)

var _ repo.HostStore = (*Store)(nil)

// Store keeps the workspace tree in two tables: folders and documents.
// Both are listed by name, folders first. Every write publishes its event
// with pg_notify inside the writing transaction, so listeners only see
// committed changes.
type Store struct {
	pool    *pgxpool.Pool
	tables  *TableNames
	tx      repositories.Transactor
	logger  *slog.Logger
	emitter *events.Emitter

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStore creates a postgres host store
func NewStore(config *RepositoryConfig) *Store {
	return &Store{
		pool:    config.Pool,
		tables:  config.Tables,
		tx:      NewTransactor(config.Pool, config.Logger),
		logger:  config.Logger,
		emitter: events.NewEmitter(events.DefaultBuffer),
	}
}

// folderPathQuery resolves a slash path to a folder id with a recursive CTE
func (s *Store) folderPathQuery() string {
	return fmt.Sprintf(`
		WITH RECURSIVE tree AS (
			SELECT id, name::text AS path
			FROM %s
			WHERE parent_id IS NULL
			UNION ALL
			SELECT f.id, t.path || '/' || f.name
			FROM %s f
			JOIN tree t ON f.parent_id = t.id
		)
		SELECT id::text FROM tree WHERE path = $1
	`, s.tables.Folders, s.tables.Folders)
}

// resolveFolder returns the id of the folder at path; nil means the root
func (s *Store) resolveFolder(ctx context.Context, path string) (*string, error) {
	if path == "" {
		return nil, nil
	}
	var id string
	err := querier(ctx, s.pool).QueryRow(ctx, s.folderPathQuery(), path).Scan(&id)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("container %q: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	return &id, nil
}

// findChild looks a name up among both child folders and documents.
// Returns nil when the name is free.
func (s *Store) findChild(ctx context.Context, parentID *string, parentPath, name string) (*models.Node, error) {
	q := querier(ctx, s.pool)
	query := fmt.Sprintf(`
		SELECT 'container', created_at FROM %s WHERE parent_id IS NOT DISTINCT FROM $1 AND name = $2
		UNION ALL
		SELECT 'document', created_at FROM %s WHERE folder_id IS NOT DISTINCT FROM $1 AND name = $2
		LIMIT 1
	`, s.tables.Folders, s.tables.Documents)

	var kind string
	var createdAt time.Time
	err := q.QueryRow(ctx, query, parentID, name).Scan(&kind, &createdAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find child: %w", err)
	}
	return &models.Node{
		Kind:      models.NodeKind(kind),
		Name:      name,
		Path:      models.JoinPath(parentPath, name),
		CreatedAt: createdAt,
	}, nil
}

// Lookup returns the node at path
func (s *Store) Lookup(ctx context.Context, path string) (*models.Node, error) {
	path = models.CleanPath(path)
	if path == "" {
		return &models.Node{Kind: models.KindContainer}, nil
	}
	parentPath, name := models.ParentPath(path), models.BaseName(path)
	parentID, err := s.resolveFolder(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	node, err := s.findChild(ctx, parentID, parentPath, name)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("node %q: %w", path, domain.ErrNotFound)
	}
	return node, nil
}

// ListChildren lists child folders then child documents, each by name
func (s *Store) ListChildren(ctx context.Context, path string) ([]models.Node, error) {
	path = models.CleanPath(path)
	folderID, err := s.resolveFolder(ctx, path)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT kind, name, created_at FROM (
			SELECT 'container' AS kind, 0 AS rank, name, created_at
			FROM %s WHERE parent_id IS NOT DISTINCT FROM $1
			UNION ALL
			SELECT 'document' AS kind, 1 AS rank, name, created_at
			FROM %s WHERE folder_id IS NOT DISTINCT FROM $1
		) children
		ORDER BY rank, name
	`, s.tables.Folders, s.tables.Documents)

	rows, err := querier(ctx, s.pool).Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	nodes := []models.Node{}
	for rows.Next() {
		var kind, name string
		var createdAt time.Time
		if err := rows.Scan(&kind, &name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		nodes = append(nodes, models.Node{
			Kind:      models.NodeKind(kind),
			Name:      name,
			Path:      models.JoinPath(path, name),
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children: %w", err)
	}
	return nodes, nil
}

// ReadText returns a document's content
func (s *Store) ReadText(ctx context.Context, path string) (string, error) {
	path = models.CleanPath(path)
	parentPath, name := models.ParentPath(path), models.BaseName(path)
	folderID, err := s.resolveFolder(ctx, parentPath)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		SELECT content FROM %s
		WHERE folder_id IS NOT DISTINCT FROM $1 AND name = $2
	`, s.tables.Documents)

	var content string
	if err := querier(ctx, s.pool).QueryRow(ctx, query, folderID, name).Scan(&content); err != nil {
		if IsPgNoRowsError(err) {
			return "", fmt.Errorf("document %q: %w", path, domain.ErrNotFound)
		}
		return "", fmt.Errorf("read %q: %v: %w", path, err, domain.ErrReadFailure)
	}
	return content, nil
}

// CreateContainer inserts a folder
func (s *Store) CreateContainer(ctx context.Context, path string) (*models.Node, error) {
	return s.create(ctx, path, models.KindContainer, "")
}

// CreateDocument inserts a document
func (s *Store) CreateDocument(ctx context.Context, path, content string) (*models.Node, error) {
	return s.create(ctx, path, models.KindDocument, content)
}

func (s *Store) create(ctx context.Context, path string, kind models.NodeKind, content string) (*models.Node, error) {
	path = models.CleanPath(path)
	if path == "" {
		return nil, fmt.Errorf("cannot create the workspace root: %w", domain.ErrValidation)
	}
	parentPath, name := models.ParentPath(path), models.BaseName(path)

	var node *models.Node
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		parentID, err := s.resolveFolder(ctx, parentPath)
		if err != nil {
			return err
		}

		// Guard against duplicates at the application level; the unique
		// indexes only cover one table each
		existing, err := s.findChild(ctx, parentID, parentPath, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict(existing)
		}

		q := querier(ctx, s.pool)
		now := time.Now().UTC()
		var query string
		var args []interface{}
		if kind == models.KindContainer {
			query = fmt.Sprintf(`
				INSERT INTO %s (id, parent_id, name, created_at)
				VALUES ($1, $2, $3, $4)
				RETURNING created_at
			`, s.tables.Folders)
			args = []interface{}{uuid.NewString(), parentID, name, now}
		} else {
			query = fmt.Sprintf(`
				INSERT INTO %s (id, folder_id, name, content, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $5)
				RETURNING created_at
			`, s.tables.Documents)
			args = []interface{}{uuid.NewString(), parentID, name, content, now}
		}

		var createdAt time.Time
		if err := q.QueryRow(ctx, query, args...).Scan(&createdAt); err != nil {
			switch {
			case IsPgDuplicateError(err):
				return conflict(&models.Node{Kind: kind, Name: name, Path: path})
			case IsPgForeignKeyError(err):
				return fmt.Errorf("parent %q: %w", parentPath, domain.ErrNotFound)
			}
			return fmt.Errorf("create %s: %w", kind, err)
		}

		node = &models.Node{Kind: kind, Name: name, Path: path, CreatedAt: createdAt}
		return s.notify(ctx, models.Event{Op: models.OpCreated, Path: path, Kind: kind})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("node created", "path", path, "kind", kind)
	return node, nil
}

// Delete removes a folder (cascading to its subtree) or a document
func (s *Store) Delete(ctx context.Context, path string) error {
	path = models.CleanPath(path)
	if path == "" {
		return fmt.Errorf("cannot delete the workspace root: %w", domain.ErrValidation)
	}
	parentPath, name := models.ParentPath(path), models.BaseName(path)

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		parentID, err := s.resolveFolder(ctx, parentPath)
		if err != nil {
			return err
		}
		q := querier(ctx, s.pool)

		kind := models.KindContainer
		result, err := q.Exec(ctx, fmt.Sprintf(`
			DELETE FROM %s WHERE parent_id IS NOT DISTINCT FROM $1 AND name = $2
		`, s.tables.Folders), parentID, name)
		if err != nil {
			return fmt.Errorf("delete folder: %w", err)
		}
		if result.RowsAffected() == 0 {
			kind = models.KindDocument
			result, err = q.Exec(ctx, fmt.Sprintf(`
				DELETE FROM %s WHERE folder_id IS NOT DISTINCT FROM $1 AND name = $2
			`, s.tables.Documents), parentID, name)
			if err != nil {
				return fmt.Errorf("delete document: %w", err)
			}
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("node %q: %w", path, domain.ErrNotFound)
		}

		return s.notify(ctx, models.Event{Op: models.OpDeleted, Path: path, Kind: kind})
	})
}

// notify queues an event on the workspace channel; it is delivered on commit
func (s *Store) notify(ctx context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := querier(ctx, s.pool).Exec(ctx, "SELECT pg_notify($1, $2)", s.tables.Channel, string(payload)); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func conflict(existing *models.Node) error {
	return &domain.ConflictError{
		Message:  fmt.Sprintf("%q already exists", existing.Path),
		NodeKind: string(existing.Kind),
		Path:     existing.Path,
	}
}

// Events returns events received on the workspace channel once Listen has started
func (s *Store) Events() <-chan models.Event {
	return s.emitter.Events()
}

// Close stops the listener and closes the event stream. The pool is left open.
func (s *Store) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}
	s.emitter.Close()
	return nil
}
