package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// ─────────────────────────────────────────
// TaskStore implementation
// ─────────────────────────────────────────

// CreateTask issues the next id from counters/tasks inside the same
// transaction that writes the task.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	counterRef := s.taskCounter()

	var id int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var counter counterDoc
		snap, err := tx.Get(counterRef)
		switch {
		case err == nil:
			if err := snap.DataTo(&counter); err != nil {
				return fmt.Errorf("decode counterDoc: %w", err)
			}
		case isNotFound(err):
		default:
			return err
		}

		id = counter.Last + 1
		doc := fromTask(task)
		doc.ID = id

		if err := tx.Set(counterRef, counterDoc{Last: id}); err != nil {
			return err
		}
		return tx.Create(s.taskDoc(domain.TaskID(id)), doc)
	})
	if err != nil {
		return fmt.Errorf("firestore CreateTask: %w", err)
	}

	task.ID = domain.TaskID(id)
	return nil
}

func (s *Store) GetTask(ctx context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error) {
	snap, err := s.taskDoc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("firestore GetTask: %w", err)
	}

	var doc taskDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetTask decode: %w", err)
	}
	if doc.UserID != string(userID) {
		return nil, notFound(id)
	}
	return toTask(doc), nil
}

// ListTasks returns the user's tasks in creation order.
func (s *Store) ListTasks(ctx context.Context, userID domain.UserID, filter domain.TaskFilter) ([]*domain.Task, error) {
	q := s.tasksCol().Where("user_id", "==", string(userID))
	switch filter {
	case domain.TaskFilterPending:
		q = q.Where("completed", "==", false)
	case domain.TaskFilterCompleted:
		q = q.Where("completed", "==", true)
	}

	iter := q.OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := []*domain.Task{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListTasks: %w", err)
		}

		var doc taskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode taskDoc: %w", err)
		}
		out = append(out, toTask(doc))
	}
	return out, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	ref := s.taskDoc(task.ID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.checkOwner(tx, ref, task.UserID, task.ID); err != nil {
			return err
		}
		return tx.Set(ref, fromTask(task))
	})
	return wrapTaskErr("UpdateTask", err)
}

func (s *Store) DeleteTask(ctx context.Context, userID domain.UserID, id domain.TaskID) error {
	ref := s.taskDoc(id)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.checkOwner(tx, ref, userID, id); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	return wrapTaskErr("DeleteTask", err)
}

func (s *Store) checkOwner(tx *firestore.Transaction, ref *firestore.DocumentRef, userID domain.UserID, id domain.TaskID) error {
	snap, err := tx.Get(ref)
	if err != nil {
		if isNotFound(err) {
			return notFound(id)
		}
		return err
	}

	var doc taskDoc
	if err := snap.DataTo(&doc); err != nil {
		return fmt.Errorf("decode taskDoc: %w", err)
	}
	if doc.UserID != string(userID) {
		return notFound(id)
	}
	return nil
}

func wrapTaskErr(op string, err error) error {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("firestore %s: %w", op, err)
}

func notFound(id domain.TaskID) error {
	return fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
}
