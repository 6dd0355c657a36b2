package warehouse

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type (
	// Config holds everything needed to reach the warehouse over the wire.
	// It is assembled by the provisioner once the cluster reports ready and is
	// never mutated afterwards.
	Config struct {
		// User is the master username the cluster was launched with
		User string `yaml:"user"`

		// Password is the master password for User
		Password string `yaml:"password"`

		// Endpoint is the cluster endpoint address reported by the control plane
		Endpoint string `yaml:"endpoint"`

		// Port is the port the warehouse listens on
		Port int `yaml:"port"`

		// Database is the database created with the cluster
		Database string `yaml:"database"`
	}

	// Rows is the subset of row iteration needed to surface query results.
	// pgx.Rows satisfies it directly.
	Rows interface {
		Next() bool
		Values() ([]any, error)
		Err() error
		Close()
	}

	// Conn is a single warehouse connection. One Conn serves exactly one
	// batch or probe; there is no pooling and no reuse across batches.
	Conn interface {
		Query(ctx context.Context, sql string) (Rows, error)
		Close(ctx context.Context) error
	}

	// Connector opens a connection to the warehouse described by cfg. It
	// exists so the prober and executor can be exercised against fakes.
	Connector func(ctx context.Context, cfg Config) (Conn, error)
)

// DSN renders the postgres-wire connection string for the warehouse.
func (c Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Endpoint, c.Port),
		Path:   "/" + c.Database,
	}
	return u.String()
}

// Connect opens a pgx connection to the warehouse. Connection deadlines are
// controlled through ctx; callers wanting a short-timeout probe wrap ctx with
// a deadline before calling.
//
// Example:
//
//	conn, err := warehouse.Connect(ctx, cfg)
//	if err != nil {
//		return errors.Wrap(err, "could not connect to warehouse")
//	}
//	defer conn.Close(ctx)
func Connect(ctx context.Context, cfg Config) (Conn, error) {
	conn, err := pgx.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to warehouse at %s:%d", cfg.Endpoint, cfg.Port)
	}

	return &pgxConn{conn: conn}, nil
}

type pgxConn struct {
	conn *pgx.Conn
}

func (c *pgxConn) Query(ctx context.Context, sql string) (Rows, error) {
	rows, err := c.conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *pgxConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
