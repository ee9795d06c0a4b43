package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"qrpass/internal/config"
	"qrpass/internal/domain"
	"qrpass/internal/domain/entities"
	"qrpass/internal/ports/input"
	"qrpass/internal/ports/output"
	"qrpass/pkg/passid"
)

var _ input.RegistrationUseCase = (*RegistrationService)(nil)

// RegistrationService drives roster rows through
// exists check -> ID -> QR image -> insert -> e-mail, one row at a time.
//
// Every external failure is contained in its row. A failed existence check
// or QR render abandons the row before anything is written; a failed insert
// still lets the e-mail go out; a failed e-mail never undoes the insert.
type RegistrationService struct {
	participantRepo output.ParticipantRepository
	ids             output.IDGenerator
	encoder         output.QREncoder
	notifier        output.Notifier
	recorder        output.RunRecorder
	logger          *zap.Logger

	baseScanURL string
	outputDir   string
	now         func() time.Time

	// emails already taken by an earlier row of this run.
	claimed map[string]struct{}
}

func NewRegistrationService(
	cfg *config.Config,
	participantRepo output.ParticipantRepository,
	ids output.IDGenerator,
	encoder output.QREncoder,
	notifier output.Notifier,
	recorder output.RunRecorder,
	logger *zap.Logger,
) *RegistrationService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &RegistrationService{
		participantRepo: participantRepo,
		ids:             ids,
		encoder:         encoder,
		notifier:        notifier,
		recorder:        recorder,
		logger:          logger,
		baseScanURL:     cfg.BaseScanURL,
		outputDir:       cfg.OutputDir,
		now:             time.Now,
		claimed:         make(map[string]struct{}),
	}
}

// RegisterAll processes records strictly in order. Row failures never stop
// the batch; a cancelled ctx does, before the next row starts, and the rows
// not yet reached are left out of the results.
func (s *RegistrationService) RegisterAll(ctx context.Context, records []entities.ParticipantRecord) []domain.RowResult {
	results := make([]domain.RowResult, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Run interrupted - remaining rows not processed",
				zap.Int("processed", len(results)),
				zap.Int("remaining", len(records)-len(results)),
				zap.Error(err))
			break
		}
		results = append(results, s.Register(ctx, rec))
	}
	return results
}

// Register processes a single roster row to one of the terminal statuses.
func (s *RegistrationService) Register(ctx context.Context, record entities.ParticipantRecord) domain.RowResult {
	start := s.now()
	rec := record.Normalize()
	result := s.register(ctx, rec)
	result.Duration = s.now().Sub(start)
	s.recorder.Observe(result)
	return result
}

func (s *RegistrationService) register(ctx context.Context, rec entities.ParticipantRecord) domain.RowResult {
	result := domain.RowResult{Row: rec.Row, Email: rec.Email}
	log := s.logger.With(zap.Int("row", rec.Row), zap.String("email", rec.Email))

	if rec.Email == "" {
		log.Info("Skipping row with no email", zap.String("name", rec.Name))
		result.Status = domain.StatusSkipped
		return result
	}

	if _, taken := s.claimed[rec.Email]; taken {
		log.Info("Participant already listed earlier in this roster - skipping")
		result.Status = domain.StatusDuplicate
		return result
	}

	exists, err := s.participantRepo.Exists(ctx, rec.Email)
	if err != nil {
		log.Error("Could not check existing participant - row abandoned", zap.Error(err))
		result.Status = domain.StatusFailed
		result.Err = fmt.Errorf("check existing participant: %w", err)
		return result
	}
	if exists {
		log.Info("Participant already exists in DB - skipping")
		s.claimed[rec.Email] = struct{}{}
		result.Status = domain.StatusDuplicate
		return result
	}

	id := s.ids.NewID()
	qrPath := passid.ImagePath(s.outputDir, id)
	result.ID = id
	log = log.With(zap.String("id", id))

	if err := s.encoder.Encode(ctx, passid.ScanURL(s.baseScanURL, id), qrPath); err != nil {
		log.Error("Could not generate QR - row abandoned", zap.Error(err))
		result.Status = domain.StatusFailed
		result.Err = fmt.Errorf("encode qr: %w", err)
		return result
	}
	result.QRPath = qrPath
	s.claimed[rec.Email] = struct{}{}
	log.Info("Generated QR", zap.String("path", qrPath))

	if err := s.participantRepo.Insert(ctx, entities.NewParticipant(id, rec)); errors.Is(err, domain.ErrParticipantExists) {
		// Registered by another writer since the existence check: the pass
		// just rendered was never stored, so it must not be mailed.
		return s.lostInsertRace(ctx, log, result)
	} else if err != nil {
		log.Error("Error inserting participant", zap.Error(err))
		result.PersistErr = err
	} else {
		log.Info("Inserted participant")
	}

	if err := s.notifier.Send(ctx, rec.Email, rec.Name, id, qrPath); err != nil {
		log.Error("Failed to send email", zap.Error(err))
		result.NotifyErr = err
	} else {
		log.Info("Emailed QR")
	}

	result.Status = domain.StatusDone
	if result.PersistErr != nil || result.NotifyErr != nil {
		result.Status = domain.StatusPartial
	}
	return result
}

func (s *RegistrationService) lostInsertRace(ctx context.Context, log *zap.Logger, result domain.RowResult) domain.RowResult {
	result.Status = domain.StatusDuplicate
	result.ID = ""
	existing, err := s.participantRepo.FindByEmail(ctx, result.Email)
	if err != nil {
		log.Warn("Participant registered concurrently - existing pass not found", zap.String("orphan_qr", result.QRPath), zap.Error(err))
		result.QRPath = ""
		return result
	}
	log.Info("Participant registered concurrently - skipping",
		zap.String("existing_id", existing.ID), zap.String("orphan_qr", result.QRPath))
	result.ID = existing.ID
	result.QRPath = ""
	return result
}

type nopRecorder struct{}

func (nopRecorder) Observe(domain.RowResult) {}
