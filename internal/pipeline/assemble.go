// internal/pipeline/assemble.go
package pipeline

import (
	"fmt"

	"wenwen-recommender/internal/common/logger"
	"wenwen-recommender/internal/common/observability"
	llmsynthesis "wenwen-recommender/internal/workers/ai-conversation/llm-synthesis"
	businessstore "wenwen-recommender/internal/workers/data-access/business-store"
	buildresponse "wenwen-recommender/internal/workers/infrastructure/build-response"
	notifyfabrication "wenwen-recommender/internal/workers/infrastructure/notify-fabrication"
	classifyintent "wenwen-recommender/internal/workers/recommendation/classify-intent"
	loginteraction "wenwen-recommender/internal/workers/recommendation/log-interaction"
	recommendbusinesses "wenwen-recommender/internal/workers/recommendation/recommend-businesses"
	rendertoneprompt "wenwen-recommender/internal/workers/recommendation/render-tone-prompt"
	validaterecommendations "wenwen-recommender/internal/workers/recommendation/validate-recommendations"
	"wenwen-recommender/pkg/registry"
)

// Options carry everything Assemble needs beyond the vocabulary.
// Recommend, Interaction and Response fall back to package defaults.
type Options struct {
	Vocabulary    *registry.Vocabulary
	Recommend     *recommendbusinesses.Config
	Interaction   *loginteraction.Config
	Response      *buildresponse.Config
	Port          businessstore.Port
	Generator     Generator
	Alerter       Alerter
	Observability *observability.Observability
}

// Assembly is a wired service plus the parts the caller manages directly.
type Assembly struct {
	Service      *Service
	Interactions *loginteraction.InteractionLogger
	Firewall     *validaterecommendations.Firewall
}

// Assemble builds every stage from the vocabulary and wires them into a Service.
func Assemble(config *Config, opts Options, log logger.Logger) (*Assembly, error) {
	if opts.Port == nil || opts.Generator == nil {
		return nil, fmt.Errorf("pipeline needs a data access port and a generator")
	}
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = registry.Default()
	}
	signals := vocab.Signals()

	recCfg := opts.Recommend
	if recCfg == nil {
		recCfg = recommendbusinesses.LoadConfig()
	}
	recCfg.Signals = signals

	interactionCfg := opts.Interaction
	if interactionCfg == nil {
		interactionCfg = loginteraction.LoadConfig()
	}
	responseCfg := opts.Response
	if responseCfg == nil {
		responseCfg = buildresponse.LoadConfig()
	}

	firewall, err := validaterecommendations.NewFirewall(
		&validaterecommendations.Config{Signals: signals, FakeAddressPatterns: vocab.FakeAddressPatterns},
		validaterecommendations.NewFabricationRegistry(vocab.FabricatedNames...),
		firewallLogger{log},
	)
	if err != nil {
		return nil, fmt.Errorf("build firewall: %w", err)
	}

	interactions := loginteraction.NewInteractionLogger(
		interactionCfg,
		opts.Port,
		loginteraction.NewSessionHistoryStore(interactionCfg.HistorySize),
		interactionLogger{log},
	)

	svc := NewService(config, Deps{
		Classifier:    classifyintent.NewClassifier(classifyintent.ConfigFromVocabulary(vocab), classifierLogger{log}),
		Recommender:   recommendbusinesses.NewEngine(recCfg, opts.Port, engineLogger{log}),
		Firewall:      firewall,
		Renderer:      rendertoneprompt.NewRenderer(rendertoneprompt.ConfigFromVocabulary(vocab), rendererLogger{log}),
		Generator:     opts.Generator,
		Interactions:  interactions,
		Sessions:      opts.Port,
		Alerter:       opts.Alerter,
		Builder:       buildresponse.NewBuilder(responseCfg, log),
		Observability: opts.Observability,
	}, log)

	return &Assembly{Service: svc, Interactions: interactions, Firewall: firewall}, nil
}

// Logger adapters for stages that declare their own Logger interfaces.
type classifierLogger struct{ logger.Logger }

func (a classifierLogger) With(fields map[string]interface{}) classifyintent.Logger {
	return classifierLogger{a.Logger.With(fields)}
}

type engineLogger struct{ logger.Logger }

func (a engineLogger) With(fields map[string]interface{}) recommendbusinesses.Logger {
	return engineLogger{a.Logger.With(fields)}
}

type firewallLogger struct{ logger.Logger }

func (a firewallLogger) With(fields map[string]interface{}) validaterecommendations.Logger {
	return firewallLogger{a.Logger.With(fields)}
}

type rendererLogger struct{ logger.Logger }

func (a rendererLogger) With(fields map[string]interface{}) rendertoneprompt.Logger {
	return rendererLogger{a.Logger.With(fields)}
}

type interactionLogger struct{ logger.Logger }

func (a interactionLogger) With(fields map[string]interface{}) loginteraction.Logger {
	return interactionLogger{a.Logger.With(fields)}
}

type storeLogger struct{ logger.Logger }

func (a storeLogger) With(fields map[string]interface{}) businessstore.Logger {
	return storeLogger{a.Logger.With(fields)}
}

type generatorLogger struct{ logger.Logger }

func (a generatorLogger) With(fields map[string]interface{}) llmsynthesis.Logger {
	return generatorLogger{a.Logger.With(fields)}
}

type notifierLogger struct{ logger.Logger }

func (a notifierLogger) With(fields map[string]interface{}) notifyfabrication.Logger {
	return notifierLogger{a.Logger.With(fields)}
}

// StoreLogger, GeneratorLogger and NotifierLogger adapt log for the
// components built outside Assemble.
func StoreLogger(log logger.Logger) businessstore.Logger { return storeLogger{log} }

func GeneratorLogger(log logger.Logger) llmsynthesis.Logger { return generatorLogger{log} }

func NotifierLogger(log logger.Logger) notifyfabrication.Logger { return notifierLogger{log} }
