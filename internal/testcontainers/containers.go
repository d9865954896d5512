// Package testcontainers starts throwaway stores for integration tests.
package testcontainers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresPassword  = "password"
	sqlServerPassword = "Fern-test-2024!"
)

// Store is a running container and the connection string to reach it.
type Store struct {
	container testcontainers.Container
	// DataSourceName is a driver connection string for database stores and host:port for redis.
	DataSourceName string
}

func (s *Store) Terminate(ctx context.Context) error {
	return s.container.Terminate(ctx)
}

// StartPostgres starts PostgreSQL with an empty catalog database.
func StartPostgres(ctx context.Context) (*Store, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "user",
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       "catalog",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Store{
		container:      container,
		DataSourceName: fmt.Sprintf("postgres://user:%s@%s/catalog?sslmode=disable", postgresPassword, endpoint),
	}, nil
}

// StartSQLServer starts SQL Server. Catalog tables live in the master database.
func StartSQLServer(ctx context.Context) (*Store, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mcr.microsoft.com/mssql/server:2022-latest",
			ExposedPorts: []string{"1433/tcp"},
			Env: map[string]string{
				"ACCEPT_EULA":       "Y",
				"MSSQL_SA_PASSWORD": sqlServerPassword,
			},
			WaitingFor: wait.ForLog("SQL Server is now ready for client connections").
				WithStartupTimeout(120 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start SQL Server: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "1433/tcp", "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	query := url.Values{}
	query.Set("database", "master")
	query.Set("encrypt", "disable")
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword("sa", sqlServerPassword),
		Host:     endpoint,
		RawQuery: query.Encode(),
	}
	return &Store{container: container, DataSourceName: u.String()}, nil
}

// StartRedis starts Redis. DataSourceName is host:port.
func StartRedis(ctx context.Context) (*Store, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Redis: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &Store{container: container, DataSourceName: endpoint}, nil
}
