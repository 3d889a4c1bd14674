package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolumeQuant/quantcore/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.NewNop())

	job := &stubJob{name: "collect", schedule: "0 30 16 * * *"}
	require.NoError(t, s.AddJob(job))

	// 중복 등록 거부
	err := s.AddJob(&stubJob{name: "collect", schedule: "@daily"})
	assert.Error(t, err)

	// 잘못된 cron 표현식 거부
	err = s.AddJob(&stubJob{name: "broken", schedule: "not a cron"})
	assert.Error(t, err)
}

func TestScheduler_RunJobUnknown(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.RunJob("nope"))
}

func TestScheduler_RunRecordsHistory(t *testing.T) {
	s := New(logger.NewNop())

	job := &stubJob{name: "collect", schedule: "0 30 16 * * *"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, err := s.History("collect")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 1, job.runs)
	assert.Equal(t, 1.0, history.SuccessRate())
}

func TestJobHistory_Trim(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
}
