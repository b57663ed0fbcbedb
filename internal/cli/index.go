package cli

import (
	"context"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/index"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/store"
)

// The index is a disposable cache over the files. Index trouble therefore
// never fails a command that already changed the file; it only warns.

func (a *app) refreshIndex(entry store.Entry) {
	ctx := context.Background()

	ix, err := index.Open(ctx, a.indexPath(), a.cfg.IDPrefix)
	if err != nil {
		a.io.Warn("index unavailable", err.Error())

		return
	}

	defer func() { _ = ix.Close() }()

	err = ix.Upsert(ctx, entry)
	if err != nil {
		a.io.Warn("index not refreshed", err.Error())
	}
}

func (a *app) removeFromIndex(id string) {
	ctx := context.Background()

	ix, err := index.Open(ctx, a.indexPath(), a.cfg.IDPrefix)
	if err != nil {
		a.io.Warn("index unavailable", err.Error())

		return
	}

	defer func() { _ = ix.Close() }()

	err = ix.Remove(ctx, id)
	if err != nil {
		a.io.Warn("index not refreshed", err.Error())
	}
}

// rebuildIndex loads every task file and rebuilds the cache from scratch.
// The caller owns the returned handle.
func (a *app) rebuildIndex(ctx context.Context, entries []store.Entry) (*index.Index, error) {
	ix, err := index.Open(ctx, a.indexPath(), a.cfg.IDPrefix)
	if err != nil {
		return nil, err
	}

	err = ix.Rebuild(ctx, entries)
	if err != nil {
		return nil, err
	}

	return ix, nil
}
