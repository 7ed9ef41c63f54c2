// Package instrumentor is the public entry point of flowtrace: it installs
// span instrumentation on an orchestration runtime and removes it again.
//
// Instrument reads the configuration once, builds (or borrows) an
// OpenTelemetry tracer provider, wraps every boundary method the runtime
// declares and installs a context forker on the runtime's method table so
// concurrent fan-out never shares one span stack. Uninstrument restores the
// original methods exactly and flushes owned exporters.
//
// Basic usage:
//
//	cfg, err := instrumentor.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt := crew.NewRuntime()
//	inst, err := instrumentor.Instrument(rt, cfg, instrumentor.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Uninstrument(context.Background())
//
// Configuration:
//
//	BRAINTRUST_API_KEY        bearer token for the export endpoint
//	BRAINTRUST_PARENT         destination project, default "project_name:<service>"
//	BRAINTRUST_API_URL        backend base URL, default https://api.braintrust.dev
//	CREWAI_DISABLE_TELEMETRY  set when the framework's own telemetry is off
//	FLOWTRACE_ENABLE_EXPORT   export spans over OTLP/HTTP
//	FLOWTRACE_SERVICE_NAME    service.name resource attribute
//	ENVIRONMENT               deployment environment, default DEV
//
// FX Integration:
//
//	app := fx.New(
//	    logger.FXModule,
//	    instrumentor.FXModule,
//	    fx.Provide(instrumentor.LoadConfig),
//	    fx.Provide(func() instrumentor.Instrumentable { return rt }),
//	    fx.Provide(func(l *logger.Logger) instrumentor.Logger { return l }),
//	)
//
// The module instruments on start and uninstruments on stop.
package instrumentor
