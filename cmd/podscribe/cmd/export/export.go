package export

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"podscribe/internal/app/export"
	"podscribe/internal/app/repository/sqlite"
)

var dbPath string
var outputFilePath string
var limit int

func init() {
	Cmd.Flags().StringVarP(&dbPath, "db", "d", "data/podscribe.db", "path to the sqlite archive")
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "set outputFilePath")
	Cmd.Flags().IntVarP(&limit, "limit", "l", 0, "max rows to export, 0 for the latest 100")

	Cmd.MarkFlagRequired("outputFilePath")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived transcripts to excel",
	Long: `Export archived transcripts to excel

- Exports the sqlite archive rows, newest first`,
	Run: func(cmd *cobra.Command, args []string) {
		dao, err := sqlite.New(dbPath)
		if err != nil {
			log.Fatalf("Failed to open archive %s: %v\n", dbPath, err)
		}
		defer dao.Close()

		transcriptions, err := dao.GetAll(limit)
		if err != nil {
			log.Fatal(err)
		}

		if err := export.ToExcel(transcriptions, outputFilePath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
	},
}
