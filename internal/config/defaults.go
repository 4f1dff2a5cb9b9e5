package config

const (
	// EnvironmentQA targets the Beaconstac QA stack.
	EnvironmentQA = "qa"
	// EnvironmentProd targets the Uniqode production stack.
	EnvironmentProd = "prod"

	defaultEnvironment          = EnvironmentQA
	defaultRequestTimeout       = 30
	defaultOutputDir            = "~/.local/share/linkflow/runs"
	defaultQRSize               = 1024
	defaultQRErrorCorrection    = 2
	defaultQRCanvasType         = "pdf"
	defaultLinkpageName         = "Hersheys TLC 101"
	defaultQRName               = "QR: Hersheys 10001"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	qaAPIBaseURL                = "https://beaconstacqa.mobstac.com/api/2.0"
	qaPDFBaseURL                = "https://q.eddy.pro"
	prodAPIBaseURL              = "https://api.uniqode.com/api/2.0"
	prodPDFBaseURL              = "https://eddy.pro"
)

var environmentBases = map[string]struct {
	api string
	pdf string
}{
	EnvironmentQA:   {api: qaAPIBaseURL, pdf: qaPDFBaseURL},
	EnvironmentProd: {api: prodAPIBaseURL, pdf: prodPDFBaseURL},
}

// Environments returns the known environment names.
func Environments() []string {
	return []string{EnvironmentQA, EnvironmentProd}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			RequestTimeout: defaultRequestTimeout,
		},
		Output: Output{
			Dir: defaultOutputDir,
		},
		QR: QR{
			Size:                 defaultQRSize,
			ErrorCorrectionLevel: defaultQRErrorCorrection,
			CanvasType:           defaultQRCanvasType,
		},
		Run: Run{
			LinkpageName: defaultLinkpageName,
			QRName:       defaultQRName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
