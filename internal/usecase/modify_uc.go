// File: internal/usecase/modify_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/adapter"
	"resume-rewrite-service/internal/domain/ports/repository"
	"resume-rewrite-service/internal/domain/ports/retrieval"
	"resume-rewrite-service/internal/infra/logging"
	"resume-rewrite-service/internal/infra/metrics"
	"resume-rewrite-service/internal/infra/worker"
	"resume-rewrite-service/internal/workflow"
)

// Compile-time check
var _ ModifyUseCase = (*modifyUC)(nil)

// ModifyUseCase drives one resume-rewrite run end to end: classify,
// run the workflow, stream progress and deltas, persist the result.
type ModifyUseCase interface {
	Resolve(ctx context.Context, sessionID string) (*model.Session, error)
	Run(ctx context.Context, sess *model.Session, sink EventSink) error
}

type ModifyConfig struct {
	Model         string
	K             int
	MaxRewrites   int
	Graded        bool
	CallTimeout   time.Duration
	StreamTimeout time.Duration
	SaveTimeout   time.Duration
}

type modifyUC struct {
	sessions repository.SessionStore
	results  repository.ResultStore
	ai       adapter.AIServiceAdapter
	retr     retrieval.Retriever
	pool     *worker.Pool
	cfg      ModifyConfig
	log      *zerolog.Logger
}

// NewModifyUseCase wires the run pipeline. results and pool may be nil:
// without a result store completed runs are simply not persisted.
func NewModifyUseCase(
	sessions repository.SessionStore,
	results repository.ResultStore,
	ai adapter.AIServiceAdapter,
	retr retrieval.Retriever,
	pool *worker.Pool,
	cfg ModifyConfig,
	log *zerolog.Logger,
) *modifyUC {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	if cfg.StreamTimeout <= 0 {
		cfg.StreamTimeout = 5 * time.Minute
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 10 * time.Second
	}
	return &modifyUC{sessions: sessions, results: results, ai: ai, retr: retr, pool: pool, cfg: cfg, log: log}
}

// Resolve looks up the session and refreshes its idle timestamp. The
// caller decides between 404 and opening a stream, so no events here.
func (uc *modifyUC) Resolve(ctx context.Context, sessionID string) (*model.Session, error) {
	return uc.sessions.GetAndTouch(ctx, sessionID)
}

func (uc *modifyUC) Run(ctx context.Context, sess *model.Session, sink EventSink) error {
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "ModifyUC.Run")()

	if err := sink.Send(ctx, startEvent(sess.SourceLanguage, sess.TargetLanguage)); err != nil {
		return err
	}

	cls := NewClassifier(uc.ai, uc.cfg.Model, log)

	jctx, cancel := context.WithTimeout(ctx, uc.cfg.CallTimeout)
	judge, err := cls.IsResume(jctx, sess.ResumeText)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("is_resume call failed")
		return uc.fail(ctx, sink, "简历识别服务暂时不可用，请稍后重试")
	}

	if err := sink.Send(ctx, isResumeEvent(judge)); err != nil {
		return err
	}
	if judge != JudgeYes {
		metrics.IncWorkflowRun("not_resume")
		return uc.fail(ctx, sink, "提供的内容不是一份简历，无法进行优化")
	}

	if err := sink.Send(ctx, messageEvent(EventClassifiedProgress, "正在识别职位类别...")); err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, uc.cfg.CallTimeout)
	label, err := cls.Classify(cctx, sess.ResumeText)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("classify call failed")
		return uc.fail(ctx, sink, "职位分类失败，请稍后重试")
	}
	if err := sink.Send(ctx, Event{Type: EventClassified, Label: label}); err != nil {
		return err
	}

	if err := sink.Send(ctx, messageEvent(EventWorkflowInfo, fmt.Sprintf("开始优化「%s」简历", label))); err != nil {
		return err
	}
	if err := sink.Send(ctx, messageEvent(EventProgress, "正在生成优化内容...")); err != nil {
		return err
	}

	wf, err := workflow.New(uc.ai, uc.retr, workflow.Options{
		Model:       uc.cfg.Model,
		K:           uc.cfg.K,
		MaxRewrites: uc.cfg.MaxRewrites,
		Graded:      uc.cfg.Graded,
		Notify:      &sinkNotifier{ctx: ctx, sink: sink},
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("workflow build failed")
		metrics.IncWorkflowRun("error")
		return uc.fail(ctx, sink, "优化流程初始化失败")
	}

	wctx, cancel := context.WithTimeout(ctx, uc.cfg.StreamTimeout)
	state, err := wf.Run(wctx, label, sess.ResumeText)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("workflow run failed")
		metrics.IncWorkflowRun("error")
		return uc.fail(ctx, sink, "生成优化简历失败，请稍后重试")
	}

	if err := sink.Send(ctx, textEvent(EventModified, state.Output)); err != nil {
		return err
	}
	if err := sink.Send(ctx, textEvent(EventFinal, state.Output)); err != nil {
		return err
	}
	if err := sink.Send(ctx, successEvent(StatusCompleted)); err != nil {
		return err
	}
	metrics.IncWorkflowRun("ok")

	uc.persist(sess, label, state.Input, state.Output)
	return nil
}

// fail closes the stream cleanly: error then success(failed). A sink
// error here just means the client already went away.
func (uc *modifyUC) fail(ctx context.Context, sink EventSink, message string) error {
	if err := sink.Send(ctx, errorEvent(message)); err != nil {
		return err
	}
	return sink.Send(ctx, successEvent(StatusFailed))
}

// persist hands the completed result to the save backend without
// blocking or failing the user-facing stream.
func (uc *modifyUC) persist(sess *model.Session, label, finalQuery, modified string) {
	if uc.results == nil {
		return
	}
	res := &model.RewriteResult{
		OriginalContent:         sess.ResumeText,
		ModifiedContent:         modified,
		ModificationDescription: sess.Requirements,
		UserID:                  sess.ClientAddr,
		Status:                  1,
		ResumeClassification:    label,
		ModifiedClassification:  finalQuery,
		CreatedAt:               time.Now(),
	}
	task := func(ctx context.Context) error {
		sctx, cancel := context.WithTimeout(ctx, uc.cfg.SaveTimeout)
		defer cancel()
		if err := uc.results.Save(sctx, res); err != nil {
			uc.log.Error().Err(err).Str("session_id", sess.ID).Msg("result save failed")
		}
		return nil
	}
	if uc.pool != nil {
		if err := uc.pool.Submit(task); err != nil {
			uc.log.Warn().Err(err).Msg("save task not queued")
		}
		return
	}
	go func() { _ = task(context.Background()) }()
}

// sinkNotifier bridges workflow progress onto the event stream.
type sinkNotifier struct {
	ctx  context.Context
	sink EventSink
}

func (n *sinkNotifier) Step(name, detail string) {
	_ = n.sink.Send(n.ctx, messageEvent(EventWorkflowStep, name))
	if detail != "" {
		_ = n.sink.Send(n.ctx, messageEvent(EventWorkflowDetail, detail))
	}
}

func (n *sinkNotifier) Delta(cumulative string) {
	_ = n.sink.Send(n.ctx, textEvent(EventUpdate, cumulative))
}
