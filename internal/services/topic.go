package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mentorhub/apiserver/types"
)

// TopicRepository defines persistence operations for topics.
type TopicRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Topic, int, error)
	Get(ctx context.Context, id int) (types.Topic, error)
	Create(ctx context.Context, topic types.Topic) (types.Topic, error)
	Update(ctx context.Context, topic types.Topic) (types.Topic, error)
	Delete(ctx context.Context, id int) error
}

// TopicService encapsulates discussion-topic use-cases.
type TopicService struct {
	repo TopicRepository
}

func NewTopicService(repo TopicRepository) *TopicService {
	return &TopicService{repo: repo}
}

func (s *TopicService) List(ctx context.Context, offset, limit int) ([]types.Topic, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *TopicService) Get(ctx context.Context, id int) (types.Topic, error) {
	return s.repo.Get(ctx, id)
}

// Create opens a topic under the given owner reference; any principal
// kind may author topics.
func (s *TopicService) Create(ctx context.Context, owner types.OwnerRef, topic types.Topic) (types.Topic, error) {
	if strings.TrimSpace(topic.Title) == "" {
		return types.Topic{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	topic.Owner = owner
	return s.repo.Create(ctx, topic)
}

func (s *TopicService) Update(ctx context.Context, topic types.Topic) (types.Topic, error) {
	if strings.TrimSpace(topic.Title) == "" {
		return types.Topic{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	return s.repo.Update(ctx, topic)
}

func (s *TopicService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
