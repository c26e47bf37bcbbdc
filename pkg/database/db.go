package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Member represents the members table
type Member struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Position string `json:"position"`
	Skill    *int   `json:"skill"`
	Phone    string `json:"phone"`
}

func (Member) TableName() string { return "members" }

// Event represents the events table
type Event struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"not null" json:"title"`
	Date  string `json:"date"`
	Place string `json:"place"`
	Memo  string `json:"memo"`
}

func (Event) TableName() string { return "events" }

// Attendance represents the attendance table, one row per (event, member)
type Attendance struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	EventID  uint   `gorm:"uniqueIndex:idx_event_member;not null" json:"event_id"`
	MemberID uint   `gorm:"uniqueIndex:idx_event_member;not null" json:"member_id"`
	Status   string `json:"status"`
}

func (Attendance) TableName() string { return "attendance" }

// TeamSet represents the event_team_sets table
type TeamSet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"index;not null" json:"event_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TeamSet) TableName() string { return "event_team_sets" }

// TeamMembership represents the event_team_members table. MemberID carries no
// foreign key so saved sets survive member removal.
type TeamMembership struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	SetID     uint `gorm:"index;not null" json:"set_id"`
	TeamIndex int  `gorm:"not null" json:"team_index"`
	MemberID  uint `gorm:"not null" json:"member_id"`
}

func (TeamMembership) TableName() string { return "event_team_members" }

// Options selects the storage engine. A non-empty DatabaseURL selects
// postgres, otherwise sqlite at DataPath is used.
type Options struct {
	DatabaseURL string
	DataPath    string
}

var sqlitePragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
}

// Open connects to the database and migrates the schema
func Open(opts Options, log zerolog.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.New(&log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			IgnoreRecordNotFoundError: true,
			LogLevel:                  gormLogLevel(log.GetLevel()),
		}),
	}

	var db *gorm.DB
	var err error

	if opts.DatabaseURL != "" {
		log.Info().Msg("connecting to postgres")
		cfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  opts.DatabaseURL,
			PreferSimpleProtocol: true,
		}), cfg)
	} else {
		log.Info().Str("path", opts.DataPath).Msg("connecting to sqlite")
		db, err = gorm.Open(sqlite.Open(opts.DataPath), cfg)
		if err == nil {
			err = configureSQLite(db, log)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&Member{}, &Event{}, &Attendance{}, &TeamSet{}, &TeamMembership{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info().Msg("database ready")
	return db, nil
}

func configureSQLite(db *gorm.DB, log zerolog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// one connection keeps the pragmas in effect for every statement
	sqlDB.SetMaxOpenConns(1)

	for _, p := range sqlitePragmas {
		if err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)).Error; err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
		}
		log.Debug().Str("pragma", p.name).Str("value", p.value).Msg("sqlite pragma set")
	}
	return nil
}

func gormLogLevel(level zerolog.Level) logger.LogLevel {
	switch {
	case level <= zerolog.DebugLevel:
		return logger.Info
	case level == zerolog.InfoLevel, level == zerolog.WarnLevel:
		return logger.Warn
	case level == zerolog.Disabled:
		return logger.Silent
	default:
		return logger.Error
	}
}
