package task

import (
	"context"
	"errors"
	"fmt"

	"playbook-controlplane/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Store is the durable record of scheduled work. Every operation is a
// synchronous round-trip; any storage fault surfaces as a storage error and
// callers must not assume partial writes succeeded.
type Store struct {
	db   *gorm.DB
	node *snowflake.Node
}

type StoreParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewStore(p StoreParams) *Store {
	return &Store{
		db:   p.DB,
		node: p.Node,
	}
}

// Create persists t and returns the store-assigned id. Any id supplied by the
// caller is discarded. Inline content without a playbook path gets a synthetic
// reference path derived from the new id.
func (s *Store) Create(ctx context.Context, t *Task) (string, error) {
	t.ID = s.node.Generate().String()

	if t.PlaybookPath == "" && t.PlaybookContent != "" {
		t.PlaybookPath = fmt.Sprintf("generated/%s.yml", t.ID)
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return "", errutil.Storage("failed to save task", errutil.WithErr(err))
	}
	return t.ID, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Task, error) {
	var t Task
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("task not found")
		}
		return nil, errutil.Storage("failed to get task", errutil.WithErr(err))
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context) ([]*Task, error) {
	var tasks []*Task
	err := s.db.WithContext(ctx).Order("run_time ASC").Find(&tasks).Error
	if err != nil {
		return nil, errutil.Storage("failed to list tasks", errutil.WithErr(err))
	}
	return tasks, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&Task{}, "id = ?", id).Error; err != nil {
		return errutil.Storage("failed to delete task", errutil.WithErr(err))
	}
	return nil
}
