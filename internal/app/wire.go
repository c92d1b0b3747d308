//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"podscribe/internal/app/job"
	"podscribe/internal/app/merge"
	"podscribe/internal/app/progress"
	"podscribe/internal/config"
)

// InitializeController assembles the full transcription pipeline from
// configuration: progress bus, downloader, ffmpeg segmenter, OpenAI
// transcriber and summarizer, episode resolver and transcript archive.
func InitializeController(cfg *config.AppConfig, logger *zap.Logger) *job.Controller {
	wire.Build(
		progress.NewBus,
		provideAcquirer,
		provideSegmenter,
		merge.New,
		provideTranscriber,
		provideSummarizer,
		provideResolver,
		provideArchive,
		provideOptions,
		job.NewController,
	)
	return &job.Controller{}
}
