package docstore

import (
	"context"
	"sort"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/store"
)

type interviewRepository struct {
	store store.Store
}

func NewInterviewRepository(s store.Store) domain.InterviewRepository {
	return &interviewRepository{store: s}
}

func (r *interviewRepository) CreateQuestions(ctx context.Context, questions []domain.InterviewQuestion) ([]domain.InterviewQuestion, error) {
	for i := range questions {
		data, err := encode(&questions[i])
		if err != nil {
			return nil, err
		}
		rec := store.Record{ID: questions[i].ID, Data: data}
		if err := r.store.Create(ctx, store.CollectionQuestions, rec); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (r *interviewRepository) GetQuestionsByJobID(ctx context.Context, jobID string) ([]domain.InterviewQuestion, error) {
	recs, err := r.store.Query(ctx, store.CollectionQuestions, store.Filter{"job_id": jobID})
	if err != nil {
		return nil, err
	}
	questions, err := decodeAll[domain.InterviewQuestion](recs)
	if err != nil {
		return nil, err
	}
	sort.Slice(questions, func(i, j int) bool {
		if !questions[i].CreatedAt.Equal(questions[j].CreatedAt) {
			return questions[i].CreatedAt.Before(questions[j].CreatedAt)
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}

func (r *interviewRepository) CreateResponse(ctx context.Context, resp *domain.InterviewResponse) error {
	data, err := encode(resp)
	if err != nil {
		return err
	}
	return r.store.Create(ctx, store.CollectionResponses, store.Record{ID: resp.ID, Data: data})
}

func (r *interviewRepository) GetResponsesByApplicationID(ctx context.Context, applicationID string) ([]domain.InterviewResponse, error) {
	recs, err := r.store.Query(ctx, store.CollectionResponses, store.Filter{"application_id": applicationID})
	if err != nil {
		return nil, err
	}
	responses, err := decodeAll[domain.InterviewResponse](recs)
	if err != nil {
		return nil, err
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].CreatedAt.Before(responses[j].CreatedAt)
	})
	return responses, nil
}
