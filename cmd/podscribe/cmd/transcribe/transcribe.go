package transcribe

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"podscribe/internal/app"
	"podscribe/internal/app/job"
	"podscribe/internal/app/model"
	"podscribe/internal/config"
	"podscribe/internal/logger"
)

var (
	audioURL     string
	episodeTitle string
	podcastName  string
	feedURL      string
	summarize    bool
	outputPath   string
	configPath   string
)

func init() {
	Cmd.Flags().StringVarP(&audioURL, "url", "u", "", "direct audio URL or episode page URL")
	Cmd.Flags().StringVarP(&episodeTitle, "title", "t", "", "episode title for feed lookup")
	Cmd.Flags().StringVarP(&podcastName, "podcast", "p", "", "podcast name for feed lookup")
	Cmd.Flags().StringVarP(&feedURL, "feed", "f", "", "pre-resolved RSS feed URL")
	Cmd.Flags().BoolVarP(&summarize, "summarize", "s", false, "summarize the transcript")
	Cmd.Flags().StringVarP(&outputPath, "outputFilePath", "o", "", "write the transcript to a file instead of stdout")
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
}

// stepOrder fixes the bar layout; steps appear in pipeline order.
var stepOrder = []string{
	model.StepMetadata,
	model.StepFeed,
	model.StepParse,
	model.StepDownload,
	model.StepCompress,
	model.StepSplit,
	model.StepTranscribe,
	model.StepMerge,
	model.StepSummarize,
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe one episode and print the transcript",
	Long: `Transcribe one episode and print the transcript.

Give either a direct audio / episode page URL, or an episode title plus
podcast name (or feed URL) for lookup through the iTunes Search API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		zl := logger.MustNew(false)
		defer zl.Sync()

		controller := app.InitializeController(cfg, zl)
		controller.Start()
		defer controller.Stop()

		jobID, err := controller.Submit(model.JobRequest{
			AudioURL:     audioURL,
			EpisodeTitle: episodeTitle,
			PodcastName:  podcastName,
			FeedURL:      feedURL,
			Summarize:    summarize,
		})
		if err != nil {
			return err
		}

		watch(controller, jobID)

		j, ok := controller.Get(jobID)
		if !ok {
			return fmt.Errorf("job %s disappeared", jobID)
		}
		if j.State == model.StateFailed {
			return fmt.Errorf("transcription failed: %s", j.Failure)
		}

		return emit(&j)
	},
}

// watch renders one mpb bar per pipeline step until the job turns
// terminal. Bars appear lazily as steps start publishing.
func watch(controller *job.Controller, jobID string) {
	container := mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithRefreshRate(120 * time.Millisecond),
	)
	bars := make(map[string]*mpb.Bar)

	for {
		snap, ok := controller.Bus().Snapshot(jobID)
		if ok {
			for _, step := range stepOrder {
				entry, published := snap.Steps[step]
				if !published {
					continue
				}
				bar, exists := bars[step]
				if !exists {
					bar = container.AddBar(100,
						mpb.PrependDecorators(
							decor.Name(step+" ", decor.WC{W: len(model.StepTranscribe) + 1, C: decor.DindentRight}),
						),
						mpb.AppendDecorators(
							decor.NewPercentage("%d", decor.WCSyncSpace),
						),
					)
					bars[step] = bar
				}
				bar.SetCurrent(int64(entry.Percentage))
			}
			if snap.Complete {
				for _, bar := range bars {
					bar.SetTotal(bar.Current(), true)
				}
				break
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	container.Wait()
}

// emit writes the transcript (and summary) to the output file or
// stdout.
func emit(j *model.Job) error {
	if j.Result == nil {
		return fmt.Errorf("job finished without a result")
	}

	text := j.Result.Transcript
	if j.Result.Summary != "" {
		text = text + "\n\n---\n\n" + j.Result.Summary
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text+"\n"), 0644); err != nil {
			return err
		}
		fmt.Printf("transcript written to %v\n", outputPath)
		return nil
	}

	fmt.Println(text)
	return nil
}
