package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"example/chess-ingest/app/models"
)

// JobQueue hands ingestion jobs to the worker.
type JobQueue interface {
	Enqueue(ctx context.Context, job models.IngestJob) error
}

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSQueue sends ingestion jobs to an SQS queue.
type SQSQueue struct {
	client   sqsSender
	queueURL string
}

func NewSQSQueue(client sqsSender, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL}
}

func (q *SQSQueue) Enqueue(ctx context.Context, job models.IngestJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal ingest job %s: %w", job.JobID, err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send ingest job %s: %w", job.JobID, err)
	}
	return nil
}

// SubmitIngestJob validates the range, records the job and enqueues it.
// Bad months are rejected here, before anything is queued.
func SubmitIngestJob(ctx context.Context, q JobQueue, players []string, startMonth, endMonth string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(players) == 0 {
		return "", ErrNoPlayers
	}
	if _, err := ParseArchiveDateRange(startMonth, endMonth); err != nil {
		return "", err
	}
	jobID, err := CreateJob(ctx, players)
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	job := models.IngestJob{JobID: jobID, Players: players, StartMonth: startMonth, EndMonth: endMonth}
	if err := q.Enqueue(ctx, job); err != nil {
		if uerr := UpdateJobStatus(ctx, jobID, models.JobFailed, 0, err.Error()); uerr != nil {
			logger.Warn("marking unsent job failed failed", "job_id", jobID, "err", uerr)
		}
		return "", err
	}
	return jobID, nil
}

// ProcessIngestJob runs one job end to end: profiles are replaced and games
// appended in one transaction, the job row gets its terminal state and an
// event is published when pub is set.
func ProcessIngestJob(ctx context.Context, svc *Service, pub EventPublisher, job models.IngestJob, logger *slog.Logger) error {
	logger = logger.With("component", "worker", "job_id", job.JobID)
	if err := UpdateJobStatus(ctx, job.JobID, models.JobRunning, 0, ""); err != nil {
		logger.Warn("marking job running failed", "err", err)
	}

	profiles, games, err := runIngest(ctx, svc, job)
	ev := models.IngestEvent{
		Type:     models.EventIngestCompleted,
		JobID:    job.JobID,
		Status:   models.JobCompleted,
		Players:  job.Players,
		Profiles: profiles,
		Games:    games,
	}
	if err != nil {
		ev.Type, ev.Status, ev.Error = models.EventIngestFailed, models.JobFailed, err.Error()
		if uerr := UpdateJobStatus(ctx, job.JobID, models.JobFailed, 0, err.Error()); uerr != nil {
			logger.Warn("marking job failed failed", "err", uerr)
		}
	} else if uerr := UpdateJobStatus(ctx, job.JobID, models.JobCompleted, games, ""); uerr != nil {
		logger.Warn("marking job completed failed", "err", uerr)
	}

	if pub != nil {
		if perr := pub.PublishIngestEvent(ctx, ev); perr != nil {
			logger.Warn("publishing ingest event failed", "err", perr)
		}
	}
	logger.Info("job finished", "status", ev.Status, "profiles", profiles, "games", games)
	return err
}

func runIngest(ctx context.Context, svc *Service, job models.IngestJob) (int, int, error) {
	profiles, err := svc.GetPlayerProfiles(ctx, job.Players)
	if err != nil {
		return 0, 0, err
	}
	defer profiles.Release()

	games, err := svc.GetPlayerGames(ctx, job.Players, job.StartMonth, job.EndMonth)
	if err != nil {
		return 0, 0, err
	}
	defer games.Release()

	_, err = LoadBatches(ctx,
		BatchLoad{Table: ProfilesTable, Record: profiles, Mode: Replace},
		BatchLoad{Table: GamesTable, Record: games, Mode: Append},
	)
	if err != nil {
		return 0, 0, err
	}
	return int(profiles.NumRows()), int(games.NumRows()), nil
}
