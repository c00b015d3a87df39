package main

import (
	"MissionLaunches/src/config"
	"MissionLaunches/src/report"
	"MissionLaunches/src/storage"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("launches", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config", "./config", "配置目录，包含 config 与 dataconfig 文件")
	dataFile := fs.String("data", "", "数据集路径，覆盖配置中的 data_file")
	outputDir := fs.String("output", "", "报表输出目录，覆盖配置中的 output_dir")
	open := fs.Bool("open", false, "生成后用浏览器打开报表")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, dcfg, err := config.LoadConfig(*configDir,
		config.ResolveFile(*configDir, "config"),
		config.ResolveFile(*configDir, "dataconfig"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数优先于配置文件和环境变量
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataFile = *dataFile
		case "output":
			cfg.OutputDir = *outputDir
		case "open":
			cfg.OpenViewer = *open
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	logger.SetLevel(storage.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := report.NewPipeline(cfg, dcfg, logger, stdout)
	if err != nil {
		logger.Fatal(err.Error())
		return err
	}

	res, err := pipeline.Run(ctx)
	if err != nil {
		logger.Fatal(err.Error())
		return err
	}

	logger.Info(fmt.Sprintf("共处理 %d 行，报表目录 %s", res.Rows, cfg.OutputDir))
	return nil
}
