package app

import (
	"log"

	"podscribe/internal/app/api"
	"podscribe/internal/app/api/openai"
	"podscribe/internal/app/api/openai/chat"
	"podscribe/internal/app/api/openai/whisper"
	"podscribe/internal/app/audio"
	"podscribe/internal/app/job"
	"podscribe/internal/app/repository"
	"podscribe/internal/app/repository/pg"
	"podscribe/internal/app/repository/sqlite"
	"podscribe/internal/app/resolver"
	"podscribe/internal/app/segment"
	"podscribe/internal/app/store"
	"podscribe/internal/config"
)

// provideAcquirer downloads episode audio over HTTP.
func provideAcquirer() job.Acquirer {
	return store.New()
}

// provideSegmenter wires the ffmpeg transcoder into the segmenter.
// ffmpeg and ffprobe must be on PATH; failing at startup beats failing
// on the first job.
func provideSegmenter() *segment.Segmenter {
	ffmpeg := audio.NewFFmpeg()
	if !ffmpeg.Available() {
		log.Fatalf("ffmpeg not found on PATH; install ffmpeg to transcode audio")
	}
	return segment.New(ffmpeg)
}

// provideTranscriber uses openai's remote service, must set environment
// variable OPENAI_API_KEY
func provideTranscriber() api.Transcriber {
	return whisper.NewRemoteTranscriber(openai.GetClient())
}

func provideSummarizer() api.Summarizer {
	return chat.NewSummarizer(openai.GetClient())
}

func provideResolver() resolver.Resolver {
	return resolver.New()
}

// provideArchive opens the configured transcript archive. Backend
// "none" disables archiving; the controller tolerates a nil DAO.
func provideArchive(cfg *config.AppConfig) repository.TranscriptionDAO {
	switch cfg.Archive.Backend {
	case "postgres":
		dao, err := pg.New(cfg.Archive.DSN)
		if err != nil {
			log.Fatalf("Failed to open postgres archive: %v\n", err)
		}
		return dao
	case "none":
		return nil
	default:
		dao, err := sqlite.New(cfg.Archive.Path)
		if err != nil {
			log.Fatalf("Failed to open sqlite archive at %s: %v\n", cfg.Archive.Path, err)
		}
		return dao
	}
}

func provideOptions(cfg *config.AppConfig) job.Options {
	return job.Options{
		ScratchDir: cfg.Jobs.ScratchDir,
		Retention:  cfg.Retention(),
	}
}
