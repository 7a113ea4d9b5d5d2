package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fuel-streams/streams/internal/subject"
	apperrors "github.com/fuel-streams/streams/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one entity row pending insertion: its rendered subject, its
// encoded payload, and its indexable columns (a per-entity map of column
// name to value, built by the packet builders in internal/domain).
type Record struct {
	Entity  string
	Subject *subject.Subject
	Value   []byte
	Columns map[string]any
}

// Store is the Record Store contract (C2, spec.md §4.2).
type Store interface {
	// InsertBatch upserts every record of a single MsgPayload inside one
	// transaction; commit is the linearization point C5 waits on before
	// publishing to the record stream.
	InsertBatch(ctx context.Context, records []Record) error
	FindOne(ctx context.Context, entity string, subj *subject.Subject, namespace string) (Item, error)
	FindMany(ctx context.Context, entity string, subj *subject.Subject, opts QueryOptions) ([]Item, error)
	FindManyBySubject(ctx context.Context, subj *subject.Subject, opts QueryOptions) ([]Item, error)
	FindLastBlockHeight(ctx context.Context, opts QueryOptions) (uint64, error)
	FindNextBlockToSave(ctx context.Context, tip uint64) ([]BlockHeightGap, error)
	Close() error
}

// GormStore is the sole production Store implementation, backed by GORM
// over Postgres (or sqlite in tests). Grounded on the teacher's
// pkg/database/sql/adapters/{postgres,sqlite} connection-setup pattern:
// DSN-based Open, a custom logger, and explicit pool sizing.
type GormStore struct {
	db *gorm.DB
}

// Config configures the relational connection. Driver is "postgres" or
// "sqlite"; for sqlite, DSN is a filepath (":memory:" for tests).
type Config struct {
	Driver       string
	DSN          string
	MaxIdleConns int
	MaxOpenConns int
}

// Connect opens the configured driver, tunes the pool, and runs
// AutoMigrate over every registered row model.
func Connect(cfg Config) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "unknown store driver: "+cfg.Driver, nil)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGORMLogger()})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open store connection")
	}

	if cfg.Driver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to get underlying sql.DB")
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, apperrors.Wrap(err, "failed to migrate store schema")
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}

// InsertBatch upserts every record inside one transaction, keyed by
// subject (spec.md §4.2 "insert(db_item)").
func (s *GormStore) InsertBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			table := subject.Table(rec.Entity)
			if table == "" {
				return apperrors.New(apperrors.CodeInvalidArgument, "unknown entity: "+rec.Entity, nil)
			}
			row := map[string]any{
				"subject":      rec.Subject.Parse(),
				"value":        rec.Value,
				"created_at":   time.Now(),
				"published_at": time.Now(),
			}
			for k, v := range rec.Columns {
				row[k] = v
			}
			updateCols := make([]string, 0, len(rec.Columns)+2)
			updateCols = append(updateCols, "value", "published_at")
			for k := range rec.Columns {
				updateCols = append(updateCols, k)
			}
			err := tx.Table(table).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "subject"}},
				DoUpdates: clause.AssignmentColumns(updateCols),
			}).Create(row).Error
			if err != nil {
				return apperrors.Wrap(err, fmt.Sprintf("insert into %s failed", table))
			}
		}
		return nil
	})
}

// FindOne returns the single row matching subj, or CodeNotFound.
func (s *GormStore) FindOne(ctx context.Context, entity string, subj *subject.Subject, namespace string) (Item, error) {
	items, err := s.FindMany(ctx, entity, subj.WithNamespace(namespace), QueryOptions{Limit: 1})
	if err != nil {
		return Item{}, err
	}
	if len(items) == 0 {
		return Item{}, apperrors.New(apperrors.CodeNotFound, "no row matches subject "+subj.Parse(), nil)
	}
	return items[0], nil
}

// FindMany is the subject-filtered, pagination-aware select described in
// spec.md §4.2 "Query construction".
func (s *GormStore) FindMany(ctx context.Context, entity string, subj *subject.Subject, opts QueryOptions) ([]Item, error) {
	table := subject.Table(entity)
	if table == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "unknown entity: "+entity, nil)
	}
	opts = opts.Normalize()

	q := s.db.WithContext(ctx).Table(table)
	if where, ok := subj.ToSQLWhere(); ok {
		q = q.Where(where)
	}
	if opts.FromBlock != nil {
		q = q.Where("block_height >= ?", *opts.FromBlock)
	}
	if opts.ToBlock != nil {
		q = q.Where("block_height < ?", *opts.ToBlock)
	}
	if opts.Namespace != "" {
		q = q.Where("subject LIKE ?", opts.Namespace+".%")
	}

	q = q.Order(orderBy(entity)).Limit(opts.Limit).Offset(opts.Offset)

	rows, err := scanRows(entity, q)
	if err != nil {
		return nil, apperrors.Wrap(err, fmt.Sprintf("find_many on %s failed", table))
	}
	return rows, nil
}

// FindManyBySubject builds params from a dynamic subject and QueryOptions
// (spec.md §4.2).
func (s *GormStore) FindManyBySubject(ctx context.Context, subj *subject.Subject, opts QueryOptions) ([]Item, error) {
	return s.FindMany(ctx, subj.Entity(), subj, opts)
}

// FindLastBlockHeight returns the max block_height in the blocks table
// bounded by opts.FromBlock.
func (s *GormStore) FindLastBlockHeight(ctx context.Context, opts QueryOptions) (uint64, error) {
	q := s.db.WithContext(ctx).Table("blocks")
	if opts.FromBlock != nil {
		q = q.Where("block_height >= ?", *opts.FromBlock)
	}
	var max *uint64
	if err := q.Select("MAX(block_height)").Scan(&max).Error; err != nil {
		return 0, apperrors.Wrap(err, "find_last_block_height failed")
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// orderBy renders the fixed ordering key from spec.md §4.2: block_height,
// tx_index, then the entity's own child index column.
func orderBy(entity string) string {
	switch entity {
	case "block":
		return "block_height ASC"
	case "transaction":
		return "block_height ASC, tx_index ASC"
	case "input", "predicate":
		return "block_height ASC, tx_index ASC, input_index ASC"
	case "output":
		return "block_height ASC, tx_index ASC, output_index ASC"
	case "receipt":
		return "block_height ASC, tx_index ASC, receipt_index ASC"
	case "message":
		return "block_height ASC, tx_index ASC, message_index ASC"
	case "utxo":
		return "block_height ASC, tx_id ASC, input_index ASC"
	default:
		return "block_height ASC"
	}
}

func scanRows(entity string, q *gorm.DB) ([]Item, error) {
	switch entity {
	case "block":
		var rows []BlockRow
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return toItems(rows), nil
	case "transaction":
		var rows []TransactionRow
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return toItems(rows), nil
	case "input":
		var rows []InputRow
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return toItems(rows), nil
	case "output":
		var rows []OutputRow
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return toItems(rows), nil
	case "receipt":
		var rows []ReceiptRow
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return toItems(rows), nil
	case "utxo":
		var rows []UtxoRow
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return toItems(rows), nil
	case "predicate":
		var rows []PredicateRow
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return toItems(rows), nil
	case "message":
		var rows []MessageRow
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return toItems(rows), nil
	default:
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "unknown entity: "+entity, nil)
	}
}

func toItems[T tableRow](rows []T) []Item {
	items := make([]Item, len(rows))
	for i, r := range rows {
		items[i] = r.toItem()
	}
	return items
}
