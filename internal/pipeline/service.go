// internal/pipeline/service.go
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"wenwen-recommender/internal/common/errors"
	"wenwen-recommender/internal/common/logger"
	"wenwen-recommender/internal/common/metrics"
	"wenwen-recommender/internal/common/observability"
	"wenwen-recommender/internal/models"
	buildresponse "wenwen-recommender/internal/workers/infrastructure/build-response"
	notifyfabrication "wenwen-recommender/internal/workers/infrastructure/notify-fabrication"
	loginteraction "wenwen-recommender/internal/workers/recommendation/log-interaction"
	recommendbusinesses "wenwen-recommender/internal/workers/recommendation/recommend-businesses"
)

// Deps are the stage implementations a Service runs.
type Deps struct {
	Classifier   Classifier
	Recommender  Recommender
	Firewall     Firewall
	Renderer     Renderer
	Generator    Generator
	Interactions InteractionLogger
	Sessions     SessionStore
	Alerter      Alerter
	Builder      ResponseBuilder
	// Observability is optional.
	Observability *observability.Observability
}

// Service runs one chat turn end to end.
type Service struct {
	config *Config
	deps   Deps
	logger logger.Logger
	alerts sync.WaitGroup
}

func NewService(config *Config, deps Deps, log logger.Logger) *Service {
	return &Service{
		config: config,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Handle returns an error only for invalid input. Every other failure is
// folded into a Response with status error.
func (s *Service) Handle(ctx context.Context, req Request) (resp *buildresponse.Response, err error) {
	start := time.Now()
	intent := models.IntentResult{Intent: models.IntentGeneral, MatchedKeywords: []string{}}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pipeline panic recovered", map[string]interface{}{
				"sessionId": req.SessionID,
				"panic":     fmt.Sprint(r),
				"stack":     string(debug.Stack()),
			})
			resp, err = s.internalFailure(req, intent), nil
			s.record(ctx, intent.Intent, resp.Status, time.Since(start))
		}
	}()

	if err := s.validate(req); err != nil {
		s.record(ctx, models.IntentGeneral, "invalid", time.Since(start))
		return nil, err
	}

	stageStart := time.Now()
	intent = s.deps.Classifier.Classify(req.UserMessage)
	observeStage("classify", stageStart)

	var (
		session sessionInfo
		rec     recommendbusinesses.Result
	)
	stageStart = time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(recovered("resolve_session", func() {
		session = s.resolveSession(gctx, req)
	}))
	g.Go(recovered("recommend", func() {
		rec = s.deps.Recommender.Execute(gctx, intent.Intent, intent.IsFollowUp)
	}))
	if err := g.Wait(); err != nil {
		fields := map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		}
		var pe *stagePanic
		if stderrors.As(err, &pe) {
			fields["stage"] = pe.stage
			fields["stack"] = pe.stack
		}
		s.logger.Error("pipeline panic recovered", fields)
		resp = s.internalFailure(req, intent)
		s.record(ctx, intent.Intent, resp.Status, time.Since(start))
		return resp, nil
	}
	observeStage("retrieve", stageStart)

	stageStart = time.Now()
	checked := s.deps.Firewall.Validate(rec.Records, intent.Intent)
	observeStage("firewall", stageStart)

	preference := req.metaString("tone")
	payload := s.deps.Renderer.Render(intent, checked.Records, req.UserMessage, preference)

	stageStart = time.Now()
	reply, genErr := s.deps.Generator.Generate(ctx, payload.System, payload.User)
	genDuration := time.Since(stageStart)
	observeStage("generate", stageStart)
	if s.deps.Observability != nil {
		s.deps.Observability.RecordGeneration(ctx, genDuration, genErr == nil)
	}

	var (
		errorCode string
		flagged   bool
	)
	if genErr != nil {
		errorCode = string(errors.CodeOf(genErr))
		reply = s.config.ApologyReply
		s.logger.Warn("generation failed, sending apology", map[string]interface{}{
			"sessionId": req.SessionID,
			"errorCode": errorCode,
			"error":     genErr.Error(),
		})
	} else {
		scan := s.deps.Firewall.ScanReplyTextAgainst(reply, checked.Records)
		if scan.Flagged {
			flagged = true
			s.alert(ctx, req, intent, reply, scan.Matches, scan.Issues)
			reply = s.deps.Renderer.SafeReply(intent.Intent, checked.Records, preference)
		}
	}

	latency := time.Since(start)
	s.deps.Interactions.Log(context.WithoutCancel(ctx), loginteraction.Turn{
		SessionID:         req.SessionID,
		UserID:            session.UserID,
		UserMessage:       req.UserMessage,
		Reply:             reply,
		Intent:            intent.Intent,
		Confidence:        intent.Confidence,
		Tone:              payload.Tone,
		RecommendedIDs:    models.IDs(checked.Records),
		Latency:           latency,
		ReplyScanFlagged:  flagged,
		PriorMessageCount: session.MessageCount,
	})

	resp, buildErr := s.deps.Builder.Build(buildresponse.Input{
		SessionID: req.SessionID,
		ReplyText: reply,
		Intent:    intent,
		Records:   checked.Records,
		ErrorCode: errorCode,
		Debug: buildresponse.DebugMetadata{
			Tone:             string(payload.Tone),
			Strategy:         rec.Strategy,
			FallbackUsed:     rec.FallbackUsed,
			Degraded:         rec.Degraded,
			FirewallIssues:   len(checked.Issues),
			FirewallWarnings: len(checked.Warnings),
			ReplyScanFlagged: flagged,
			SessionResolved:  session.Resolved,
			ResponseTimeMs:   latency.Milliseconds(),
		},
	})
	if buildErr != nil {
		s.logger.Error("response build failed", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     buildErr.Error(),
		})
		resp = s.internalFailure(req, intent)
	}

	s.record(ctx, intent.Intent, resp.Status, latency)
	return resp, nil
}

func (s *Service) validate(req Request) error {
	var missing []string
	if strings.TrimSpace(req.SessionID) == "" {
		missing = append(missing, "sessionId")
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		missing = append(missing, "userMessage")
	}
	if len(missing) > 0 {
		return errors.NewInvalidRequestError(strings.Join(missing, ", ") + " is required")
	}
	if s.config.MaxMessageRunes > 0 && utf8.RuneCountInString(req.UserMessage) > s.config.MaxMessageRunes {
		return errors.NewInvalidRequestError(fmt.Sprintf("userMessage exceeds %d characters", s.config.MaxMessageRunes))
	}
	return nil
}

// resolveSession finds or creates the user and the session. Failures are
// logged and leave the turn anonymous.
func (s *Service) resolveSession(ctx context.Context, req Request) sessionInfo {
	externalID := req.metaString("externalId")
	if externalID == "" {
		externalID = "anonymous:" + req.SessionID
	}

	user, err := s.deps.Sessions.FindUserByExternalID(ctx, externalID)
	if err == nil && user == nil {
		user, err = s.deps.Sessions.CreateUser(ctx, externalID, req.metaString("displayName"), req.UserMeta)
		if err == nil && user == nil {
			err = errNothingCreated
		}
	}
	if err != nil {
		s.sessionFailure(req, "resolve_user", err)
		return sessionInfo{}
	}

	sess, err := s.deps.Sessions.FindSession(ctx, req.SessionID)
	if err == nil && sess == nil {
		meta := map[string]interface{}{}
		if channel := req.metaString("channel"); channel != "" {
			meta["channel"] = channel
		}
		sess, err = s.deps.Sessions.CreateSession(ctx, req.SessionID, user.ID, meta)
		if err == nil && sess == nil {
			err = errNothingCreated
		}
	}
	if err != nil {
		s.sessionFailure(req, "resolve_session", err)
		return sessionInfo{UserID: user.ID}
	}
	return sessionInfo{UserID: user.ID, MessageCount: sess.MessageCount, Resolved: true}
}

var errNothingCreated = stderrors.New("store returned no row and no error")

// stagePanic carries a panic out of an errgroup goroutine.
type stagePanic struct {
	stage string
	value interface{}
	stack string
}

func (p *stagePanic) Error() string {
	return fmt.Sprintf("panic in %s: %v", p.stage, p.value)
}

// recovered adapts fn for errgroup. A panic in fn is returned as a
// *stagePanic instead of taking down the process.
func recovered(stage string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &stagePanic{stage: stage, value: r, stack: string(debug.Stack())}
			}
		}()
		fn()
		return nil
	}
}

func (s *Service) sessionFailure(req Request, step string, err error) {
	s.logger.Warn("session resolution failed", map[string]interface{}{
		"sessionId": req.SessionID,
		"step":      step,
		"errorCode": string(errors.CodeOf(err)),
		"error":     err.Error(),
	})
}

// alert publishes in the background so a slow channel never delays the reply.
func (s *Service) alert(ctx context.Context, req Request, intent models.IntentResult, reply string, matches, issues []string) {
	if s.deps.Alerter == nil {
		return
	}
	alert := notifyfabrication.Alert{
		SessionID:   req.SessionID,
		Intent:      string(intent.Intent),
		UserMessage: req.UserMessage,
		Reply:       reply,
		Matches:     matches,
		Issues:      issues,
		Timestamp:   time.Now().UTC(),
	}
	alertCtx := context.WithoutCancel(ctx)
	s.alerts.Add(1)
	go func() {
		defer s.alerts.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("alert panic recovered", map[string]interface{}{
					"sessionId": req.SessionID,
					"panic":     fmt.Sprint(r),
				})
			}
		}()
		_ = s.deps.Alerter.Notify(alertCtx, alert)
	}()
}

// Wait blocks until in-flight alerts finish.
func (s *Service) Wait() {
	s.alerts.Wait()
}

func (s *Service) internalFailure(req Request, intent models.IntentResult) *buildresponse.Response {
	return &buildresponse.Response{
		ReplyText:             buildresponse.InternalErrorReply,
		SessionID:             req.SessionID,
		Intent:                intent.Intent,
		Confidence:            intent.Confidence,
		RecommendedBusinesses: []buildresponse.Business{},
		DebugMetadata:         buildresponse.DebugMetadata{MatchedKeywords: []string{}},
		Status:                buildresponse.StatusError,
		ErrorCode:             string(errors.ErrCodeInternal),
	}
}

// Metrics returns the session analysis signals.
func (s *Service) Metrics(sessionID string) loginteraction.Metrics {
	return s.deps.Interactions.Metrics(sessionID)
}

func (s *Service) record(ctx context.Context, intent models.Intent, status string, d time.Duration) {
	metrics.RequestsTotal.WithLabelValues(string(intent), status).Inc()
	if s.deps.Observability != nil {
		s.deps.Observability.RecordRequest(ctx, string(intent), status, d)
	}
}

func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
