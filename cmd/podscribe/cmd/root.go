package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"podscribe/cmd/podscribe/cmd/export"
	"podscribe/cmd/podscribe/cmd/serve"
	"podscribe/cmd/podscribe/cmd/transcribe"
	"podscribe/cmd/podscribe/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podscribe",
	Short: "Transcribe podcast episodes with OpenAI Whisper",
	Long: `Transcribe podcast episodes with OpenAI Whisper.
- Resolve an episode from a direct URL, a podcast page, or a feed lookup
- Download, compress and split the audio under the upload ceiling
- Transcribe each segment in order and merge the overlap away
- Serve the same pipeline over HTTP with live progress`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
