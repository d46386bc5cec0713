package decode

import "github.com/soocke/pixel-scan-go/config"

// FromConfig builds the decoder described by cfg: a MultiReader over the
// configured formats, downscaled by AnalysisScale when below 1.
func FromConfig(cfg *config.Config) (Decoder, error) {
	var formats []string
	tryHarder := false
	scale := 1.0
	if cfg != nil {
		formats, tryHarder, scale = cfg.Formats, cfg.TryHarder, cfg.AnalysisScale
	}
	r, err := NewMultiReader(formats, tryHarder)
	if err != nil {
		return nil, err
	}
	return Scaled(r, scale), nil
}
