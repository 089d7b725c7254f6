package interfaces

import (
	"context"

	"sentiment-aligner/src/models"
)

// -----------------------------------------------------------------------------
// IDataExchanger shares finished reports with external consumers.
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Publish stores the latest report for a ticker.
	Publish(report models.MReport, metrics models.MProcessingMetrics)

	// Start the server
	Start() error

	// Stop the server gracefully
	Stop(ctx context.Context) error
}
