package service

import (
	"context"
	"fmt"

	"rowstore/internal/entity"
	"rowstore/internal/repository"
)

// PersonService provides validated CRUD over the people table and publishes
// change events for each mutation.
type PersonService struct {
	repo     repository.Repository[int64, entity.Person]
	eventBus *EventBus
}

// NewPersonService creates a new person service
func NewPersonService(repo repository.Repository[int64, entity.Person], eventBus *EventBus) *PersonService {
	return &PersonService{
		repo:     repo,
		eventBus: eventBus,
	}
}

// Create validates and inserts an unsaved person, returning the assigned key.
func (s *PersonService) Create(ctx context.Context, p entity.Person) (int64, error) {
	if p.Saved() {
		return 0, fmt.Errorf("person already persisted with id %d", *p.ID)
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	id, err := s.repo.Save(ctx, p)
	if err != nil {
		return 0, err
	}

	s.eventBus.Publish(newEvent(EventPersonSaved, map[string]int64{"person_id": id}))
	return id, nil
}

// CreateAll validates and inserts a batch, returning keys in input order.
func (s *PersonService) CreateAll(ctx context.Context, people []entity.Person) ([]int64, error) {
	for i, p := range people {
		if p.Saved() {
			return nil, fmt.Errorf("person %d already persisted with id %d", i, *p.ID)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("person %d: %w", i, err)
		}
	}

	ids, err := s.repo.SaveAll(ctx, people)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(newEvent(EventPersonSaved, map[string][]int64{"person_ids": ids}))
	return ids, nil
}

// Update validates and rewrites an already-persisted person.
func (s *PersonService) Update(ctx context.Context, p entity.Person) error {
	if !p.Saved() {
		return fmt.Errorf("person has no id; use Create")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.Save(ctx, p); err != nil {
		return err
	}

	s.eventBus.Publish(newEvent(EventPersonSaved, map[string]int64{"person_id": *p.ID}))
	return nil
}

// Get returns the person with the given key, or ErrNotFound.
func (s *PersonService) Get(ctx context.Context, id int64) (entity.Person, error) {
	return s.repo.FindExistingByID(ctx, id)
}

// Lookup returns the person with the given key, or nil when absent.
func (s *PersonService) Lookup(ctx context.Context, id int64) (*entity.Person, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all people in ascending key order.
func (s *PersonService) List(ctx context.Context) ([]entity.Person, error) {
	return s.repo.FindAll(ctx)
}

// ListByIDs returns the people matching ids, preserving input order.
func (s *PersonService) ListByIDs(ctx context.Context, ids []int64) ([]entity.Person, error) {
	return s.repo.FindByIDs(ctx, ids)
}

// Duplicate copies the person at id into a new record and returns its key.
func (s *PersonService) Duplicate(ctx context.Context, id int64) (int64, error) {
	newID, err := s.repo.CopyAndSave(ctx, id)
	if err != nil {
		return 0, err
	}

	s.eventBus.Publish(newEvent(EventPersonCopied, map[string]int64{
		"source_id": id,
		"person_id": newID,
	}))
	return newID, nil
}

// Delete removes the person with the given key; absent keys are a no-op.
func (s *PersonService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(newEvent(EventPersonDeleted, map[string]int64{"person_id": id}))
	return nil
}

// Clear removes every person.
func (s *PersonService) Clear(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}

	s.eventBus.Publish(newEvent(EventPeopleCleared, nil))
	return nil
}
