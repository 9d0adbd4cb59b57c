package pinforest

import (
	"github.com/sirupsen/logrus"

	"github.com/i5heu/pinforest/pkg/interfaces"
)

// Config wires a Forest to its collaborators. PinLister, Fetcher and Remover
// are required; Providers is only needed for provider lookups.
type Config struct {
	PinLister interfaces.PinLister
	Fetcher   interfaces.ObjectFetcher
	Remover   interfaces.PinRemover
	Providers interfaces.ProviderFinder

	// Durable keeps non-directory verdicts across restarts; Session keeps
	// directory records for the current session. Handles implementing
	// io.Closer are closed by Forest.Close.
	Durable interfaces.KeyValue
	Session interfaces.KeyValue

	// Workers bounds concurrent provider lookups. 0 uses the pool default.
	Workers int
	// Logger is optional. If nil, logrus.New() is used.
	Logger *logrus.Logger
}
