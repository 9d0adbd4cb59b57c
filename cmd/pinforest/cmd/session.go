package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/internal/config"
	"github.com/i5heu/pinforest/internal/keyValStore"
	"github.com/i5heu/pinforest/internal/kuboClient"
	"github.com/i5heu/pinforest/internal/sqliteStore"
	"github.com/i5heu/pinforest/pkg/interfaces"
)

// openForest wires a forest to the node and to the caches from conf.
func openForest() (*pinforest.Forest, error) {
	timeout, err := conf.Timeout()
	if err != nil {
		return nil, err
	}

	client := kuboClient.New(kuboClient.Config{
		API:           conf.API,
		PinType:       conf.PinType,
		Timeout:       timeout,
		ProviderLimit: conf.ProviderLimit,
		Logger:        logger,
	})

	durable, err := openDurable()
	if err != nil {
		return nil, err
	}

	session, err := keyValStore.NewKeyValStore(keyValStore.StoreConfig{InMemory: true, Logger: logger})
	if err != nil {
		closeQuietly(durable)
		return nil, fmt.Errorf("error opening session cache: %w", err)
	}

	forest, err := pinforest.New(pinforest.Config{
		PinLister: client,
		Fetcher:   client,
		Remover:   client,
		Providers: client,
		Durable:   durable,
		Session:   session,
		Workers:   conf.Workers,
		Logger:    logger,
	})
	if err != nil {
		closeQuietly(durable)
		session.Close()
		return nil, err
	}
	return forest, nil
}

func openDurable() (interfaces.KeyValue, error) {
	dir, err := conf.ExpandedDataDir()
	if err != nil {
		return nil, err
	}

	switch conf.DurableBackend {
	case config.BackendSQLite:
		store, err := sqliteStore.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("error opening durable cache: %w", err)
		}
		return store, nil
	default:
		store, err := keyValStore.NewKeyValStore(keyValStore.StoreConfig{
			Paths:  []string{filepath.Join(dir, "badger")},
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("error opening durable cache: %w", err)
		}
		return store, nil
	}
}

func closeQuietly(kv interfaces.KeyValue) {
	if c, ok := kv.(interface{ Close() error }); ok {
		c.Close()
	}
}

// withForest opens a forest, optionally refreshes it, runs fn and closes the
// forest. Interrupts cancel the context.
func withForest(refresh bool, fn func(ctx context.Context, f *pinforest.Forest) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f, err := openForest()
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.WithError(err).Warn("error closing caches")
		}
	}()

	if refresh {
		if _, err := f.Refresh(ctx); err != nil {
			return err
		}
	}
	return fn(ctx, f)
}
