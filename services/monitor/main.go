package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/iulianpascalau/web-vitals-monitoring/commonGo"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/config"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/factory"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/source"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "monitor"
	logFileLifeSpanInSec = 86400 // 24h
	logFileLifeSpanInMB  = 1024  // 1GB
	configFile           = "./config.toml"
	envFile              = "./.env"
	envServiceKey        = "SERVICE_KEY"
)

// appVersion should be populated at build time using ldflags
var appVersion = "undefined"
var fileLogging commonGo.FileLoggingHandler

var (
	monitorHelpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`

	log = logger.GetOrCreate("monitor")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,vitals:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the vitals package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogInfo.String(),
	}
	// logSaveFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
	// workingDirectory defines a flag for the path for the working directory.
	workingDirectory = cli.StringFlag{
		Name:  "working-directory",
		Usage: "This flag specifies the `directory` where the monitor will store logs.",
		Value: "",
	}
	// traceFile points to the recorded performance trace to replay
	traceFile = cli.StringFlag{
		Name:  "trace-file",
		Usage: "This flag specifies the performance trace `file` (newline-delimited JSON records) to run through the monitor.",
		Value: "./trace.ndjson",
	}

	envFileContents = map[string]string{
		envServiceKey: "",
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = monitorHelpTemplate
	app.Name = "Web vitals monitor"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "Replays a recorded browser performance trace through the vitals pipeline and ships the reports to the collector"
	app.Flags = []cli.Flag{
		logLevel,
		logSaveFile,
		workingDirectory,
		traceFile,
	}
	app.Authors = []cli.Author{
		{
			Name:  "Iulian Pascalau",
			Email: "iulian.pascalau@gmail.com",
		},
	}

	app.Action = run

	defer func() {
		if fileLogging != nil {
			_ = fileLogging.Close()
		}
	}()

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	saveLogFile := ctx.GlobalBool(logSaveFile.Name)
	workingDir := ctx.GlobalString(workingDirectory.Name)

	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}

	fileLogging, err = commonGo.AttachFileLogger(log, defaultLogsPath, logFilePrefix, saveLogFile, workingDir)
	if err != nil {
		return err
	}

	if !check.IfNil(fileLogging) {
		timeLogLifeSpan := time.Second * time.Duration(logFileLifeSpanInSec)
		sizeLogLifeSpanInMB := uint64(logFileLifeSpanInMB)
		err = fileLogging.ChangeFileLifeSpan(timeLogLifeSpan, sizeLogLifeSpanInMB)
		if err != nil {
			return err
		}
	}

	log.Info("Starting web vitals monitor", "version", appVersion, "pid", os.Getpid())

	err = commonGo.ReadEnvFile(envFile, envFileContents)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	traceData, err := os.ReadFile(ctx.GlobalString(traceFile.Name))
	if err != nil {
		return fmt.Errorf("failed to read trace file: %w", err)
	}

	traceSource := source.NewTraceSource(source.ArgsTraceSource{})
	err = traceSource.Preload(traceData)
	if err != nil {
		return err
	}

	componentsHandler, err := factory.NewComponentsHandler(
		envFileContents[envServiceKey],
		*cfg,
		traceSource,
		traceSource,
		traceSource,
	)
	if err != nil {
		return err
	}
	defer componentsHandler.Close()

	componentsHandler.Start()

	err = traceSource.Replay(bytes.NewReader(traceData))
	if err != nil {
		return err
	}

	data := componentsHandler.GetPerformanceData()
	printable, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	log.Info("Trace replay finished", "performance data", "\n"+string(printable))

	return nil
}
