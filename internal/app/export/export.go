package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"podscribe/internal/app/model"
)

// ToExcel writes archived transcriptions to an xlsx workbook.
func ToExcel(transcriptions []model.Transcription, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "ID"
	headerRow.AddCell().Value = "Job ID"
	headerRow.AddCell().Value = "Podcast"
	headerRow.AddCell().Value = "Episode"
	headerRow.AddCell().Value = "Audio Duration"
	headerRow.AddCell().Value = "Transcript"
	headerRow.AddCell().Value = "Summary"
	headerRow.AddCell().Value = "Error Message"
	headerRow.AddCell().Value = "Created At"

	for _, t := range transcriptions {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(t.ID)
		row.AddCell().Value = t.JobID
		row.AddCell().Value = t.PodcastName
		row.AddCell().Value = t.EpisodeTitle
		row.AddCell().Value = fmt.Sprint(t.AudioDuration)
		row.AddCell().Value = t.Transcript
		row.AddCell().Value = t.Summary
		row.AddCell().Value = t.ErrorMessage
		row.AddCell().Value = t.CreatedAt.Format(time.RFC3339)
	}

	return file.Save(outputFilePath)
}
