package keywords

// Preset is a canned research-area keyword/category bundle a profile's
// KeywordSpec may reference by name instead of hand-listing keywords.
type Preset struct {
	Keywords   []string
	Categories []string
}

// Presets holds the built-in research-area bundles.
var Presets = map[string]Preset{
	"ai": {
		Keywords: []string{
			"artificial intelligence",
			"AI",
			"machine intelligence",
			"deep learning",
			"neural network",
		},
		Categories: []string{"cs.AI", "cs.LG", "stat.ML"},
	},
	"robotics": {
		Keywords: []string{
			"robot",
			"robotics",
			"robotic",
			"autonomous",
			"navigation",
			"manipulation",
			"SLAM",
			"motion planning",
			"path planning",
			"humanoid",
			"quadruped",
			"mobile robot",
		},
		Categories: []string{"cs.RO"},
	},
	"cv": {
		Keywords: []string{
			"computer vision",
			"image processing",
			"visual",
			"object detection",
			"image recognition",
			"video analysis",
		},
		Categories: []string{"cs.CV", "eess.IV"},
	},
	"nlp": {
		Keywords: []string{
			"natural language",
			"NLP",
			"language model",
			"text processing",
			"machine translation",
			"sentiment analysis",
		},
		Categories: []string{"cs.CL"},
	},
}
