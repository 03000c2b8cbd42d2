package sync

import (
	"context"
	"fmt"
	"io"

	"github.com/sdejongh/foldermirror/pkg/digest"
	"github.com/sdejongh/foldermirror/pkg/logging"
	"github.com/sdejongh/foldermirror/pkg/models"
	"github.com/sdejongh/foldermirror/pkg/storage"
)

// Applier executes planned actions against the replica tree.
// It is the only component that modifies the filesystem.
type Applier struct {
	source        *storage.Tree
	replica       *storage.Tree
	readerWrapper digest.ReaderWrapper
	logger        logging.Logger
}

// NewApplier creates an applier copying from source into replica
func NewApplier(source, replica *storage.Tree, logger logging.Logger) *Applier {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Applier{
		source:  source,
		replica: replica,
		logger:  logger,
	}
}

// SetReaderWrapper sets a function wrapping source readers during copies (e.g., for rate limiting)
func (a *Applier) SetReaderWrapper(wrapper digest.ReaderWrapper) {
	a.readerWrapper = wrapper
}

// Apply executes one action and, on success, records the matching event in
// sink. It returns the number of bytes copied. A failure is returned as
// *models.ApplyError and leaves sink untouched.
func (a *Applier) Apply(ctx context.Context, action models.Action, sink EventSink) (int64, error) {
	var (
		copied int64
		err    error
	)

	switch action.Kind {
	case models.ActionCreateFile, models.ActionUpdateFile:
		copied, err = a.copyFile(ctx, action.Path)
	case models.ActionCreateDir:
		err = a.replica.MkdirAll(action.Path)
	case models.ActionDeleteFile:
		err = a.replica.RemoveFile(action.Path)
	case models.ActionDeleteDir:
		err = a.replica.RemoveDir(action.Path)
	default:
		err = fmt.Errorf("unknown action kind: %s", action.Kind)
	}

	if err != nil {
		return copied, models.NewApplyError(action, err)
	}

	if sink != nil {
		sink.Record(models.NewEvent(action.Path, action.EventKind()))
	}
	return copied, nil
}

// copyFile copies a file from source to replica, creating missing parents
func (a *Applier) copyFile(ctx context.Context, rel string) (int64, error) {
	src, err := a.source.Open(rel)
	if err != nil {
		return 0, fmt.Errorf("failed to read source: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	// Get source metadata to preserve timestamps and permissions
	info, err := a.source.Stat(rel)
	if err != nil {
		return 0, fmt.Errorf("failed to get source metadata: %w", err)
	}

	var reader io.Reader = src
	if a.readerWrapper != nil {
		reader = a.readerWrapper(reader)
	}

	written, err := a.replica.Write(ctx, rel, reader)
	if err != nil {
		return written, fmt.Errorf("failed to write replica: %w", err)
	}

	if err := a.replica.Preserve(rel, info); err != nil {
		a.logger.Debug(ctx, "Could not preserve file metadata", logging.Fields{
			"path":  rel,
			"error": err.Error(),
		})
	}

	return written, nil
}
