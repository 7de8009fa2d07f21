package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/realtime"
)

func TestStreamFilterScopesUpdates(t *testing.T) {
	owner := domain.Actor{UserID: "hirer-1", Role: domain.RoleHiring}
	mine := &domain.Application{ID: "app-1", CandidateID: "cand-1", Job: &domain.Job{CreatedBy: "hirer-1"}}
	other := &domain.Application{ID: "app-2", CandidateID: "cand-2", Job: &domain.Job{CreatedBy: "hirer-2"}}

	f := newStreamFilter(owner)

	assert.True(t, f.allow(realtime.Update{Type: realtime.UpdateUpsert, ApplicationID: mine.ID, Application: mine}))
	assert.False(t, f.allow(realtime.Update{Type: realtime.UpdateUpsert, ApplicationID: other.ID, Application: other}))

	// Evictions only reach subscribers that were shown the record.
	assert.False(t, f.allow(realtime.Update{Type: realtime.UpdateEvict, ApplicationID: other.ID}))
	assert.True(t, f.allow(realtime.Update{Type: realtime.UpdateEvict, ApplicationID: mine.ID}))
	assert.False(t, f.allow(realtime.Update{Type: realtime.UpdateEvict, ApplicationID: mine.ID}),
		"a forwarded eviction clears visibility")
}

func TestStreamFilterCarriesSnapshotVisibility(t *testing.T) {
	cand := domain.Actor{UserID: "cand-1", Role: domain.RoleCandidate}
	f := newStreamFilter(cand)

	app := &domain.Application{ID: "app-1", CandidateID: "cand-1"}
	assert.True(t, f.admit(app))
	assert.False(t, f.admit(&domain.Application{ID: "app-2", CandidateID: "cand-2"}))

	assert.True(t, f.allow(realtime.Update{Type: realtime.UpdateEvict, ApplicationID: "app-1"}),
		"records shown in the snapshot stay evictable")
	assert.False(t, f.allow(realtime.Update{Type: realtime.UpdateEvict, ApplicationID: "app-2"}))
}
