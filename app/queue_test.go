package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"example/chess-ingest/app/models"
)

type fakeSender struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSender) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

type fakePublisher struct {
	events []models.IngestEvent
}

func (p *fakePublisher) PublishIngestEvent(_ context.Context, ev models.IngestEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func TestSubmitIngestJob(t *testing.T) {
	sender := &fakeSender{}
	q := NewSQSQueue(sender, "https://sqs.us-east-1.amazonaws.com/1/ingest")

	jobID, err := SubmitIngestJob(context.Background(), q, []string{"alice", "bob"}, "2023/01", "2023/05", testLogger())
	if err != nil {
		t.Fatalf("SubmitIngestJob error = %v", err)
	}
	if len(sender.inputs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.inputs))
	}
	in := sender.inputs[0]
	if aws.ToString(in.QueueUrl) != "https://sqs.us-east-1.amazonaws.com/1/ingest" {
		t.Fatalf("QueueUrl = %q", aws.ToString(in.QueueUrl))
	}

	var job models.IngestJob
	if err := json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &job); err != nil {
		t.Fatalf("message body: %v", err)
	}
	if job.JobID != jobID || len(job.Players) != 2 || job.StartMonth != "2023/01" || job.EndMonth != "2023/05" {
		t.Fatalf("job = %+v, id %s", job, jobID)
	}
}

func TestSubmitIngestJobRejectsBadRange(t *testing.T) {
	sender := &fakeSender{}
	q := NewSQSQueue(sender, "q")

	if _, err := SubmitIngestJob(context.Background(), q, []string{"alice"}, "2023/05", "2023/01", testLogger()); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("error = %v, want ErrInvalidRange", err)
	}
	if _, err := SubmitIngestJob(context.Background(), q, []string{"alice"}, "May 2023", "", testLogger()); !errors.Is(err, ErrInvalidDateFormat) {
		t.Fatalf("error = %v, want ErrInvalidDateFormat", err)
	}
	if _, err := SubmitIngestJob(context.Background(), q, nil, "", "", testLogger()); !errors.Is(err, ErrNoPlayers) {
		t.Fatalf("error = %v, want ErrNoPlayers", err)
	}
	if len(sender.inputs) != 0 {
		t.Fatalf("sent %d messages, want 0", len(sender.inputs))
	}
}

func TestSubmitIngestJobSendFailure(t *testing.T) {
	rec := useRecordingDB(t, "UPDATE jobs")
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	q := NewSQSQueue(&fakeSender{err: errors.New("throttled")}, "q")
	if _, err := SubmitIngestJob(context.Background(), q, []string{"alice"}, "", "", logger); err == nil {
		t.Fatalf("expected send error")
	}

	queries := rec.prepared()
	if len(queries) != 2 || !strings.HasPrefix(queries[0], "INSERT INTO jobs") || !strings.HasPrefix(queries[1], "UPDATE jobs") {
		t.Fatalf("statements = %q, want insert then update", queries)
	}
	if !strings.Contains(logs.String(), "marking unsent job failed failed") {
		t.Fatalf("update failure was not logged: %q", logs.String())
	}
}

func TestProcessIngestJob(t *testing.T) {
	srv, _ := newChessServer(t)
	svc := newTestService(srv)
	pub := &fakePublisher{}

	job := models.IngestJob{JobID: "job-1", Players: []string{"alice"}, StartMonth: "2023/05", EndMonth: "2023/05"}
	if err := ProcessIngestJob(context.Background(), svc, pub, job, testLogger()); err != nil {
		t.Fatalf("ProcessIngestJob error = %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Type != models.EventIngestCompleted || ev.Status != models.JobCompleted || ev.Profiles != 1 || ev.Games != 2 || ev.Error != "" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestProcessIngestJobLoadsBothTablesTogether(t *testing.T) {
	rec := useRecordingDB(t, `COPY "players_games"`)
	srv, _ := newChessServer(t)
	pub := &fakePublisher{}

	job := models.IngestJob{JobID: "job-3", Players: []string{"alice"}, StartMonth: "2023/05", EndMonth: "2023/05"}
	if err := ProcessIngestJob(context.Background(), newTestService(srv), pub, job, testLogger()); err == nil {
		t.Fatalf("expected games load failure")
	}
	if rec.commits != 0 || rec.rollbacks != 1 {
		t.Fatalf("commits = %d rollbacks = %d, want profiles rolled back with games", rec.commits, rec.rollbacks)
	}
	if len(pub.events) != 1 || pub.events[0].Status != models.JobFailed {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestProcessIngestJobFailure(t *testing.T) {
	srv, _ := newChessServer(t)
	svc := newTestService(srv)
	pub := &fakePublisher{}

	job := models.IngestJob{JobID: "job-2", Players: []string{"ghost"}}
	err := ProcessIngestJob(context.Background(), svc, pub, job, testLogger())
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("error = %v, want ErrPlayerNotFound", err)
	}
	if len(pub.events) != 1 || pub.events[0].Type != models.EventIngestFailed || pub.events[0].Status != models.JobFailed || pub.events[0].Error == "" {
		t.Fatalf("events = %+v", pub.events)
	}
}
