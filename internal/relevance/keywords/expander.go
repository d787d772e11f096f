// Package keywords expands a raw interest keyword list with synonyms and
// abbreviations, and carries the built-in research-area presets.
package keywords

import "strings"

// synonyms maps a short domain term to its related phrasings. Lookup is by
// substring containment in either direction, mirroring how the term list
// was curated: a keyword matches an entry if it contains the key or the
// key contains it.
var synonyms = map[string][]string{
	"robot":       {"robotics", "robotic", "autonomous agent", "android", "humanoid"},
	"ai":          {"artificial intelligence", "machine intelligence", "intelligent system"},
	"ml":          {"machine learning", "statistical learning", "automated learning"},
	"dl":          {"deep learning", "neural network", "neural net", "deep neural network"},
	"cv":          {"computer vision", "visual perception", "image analysis", "visual recognition"},
	"nlp":         {"natural language processing", "language processing", "text processing"},
	"llm":         {"large language model", "language model", "generative model"},
	"vla":         {"vision language action", "vision-language-action", "multimodal action"},
	"slam":        {"simultaneous localization and mapping", "localization and mapping"},
	"rl":          {"reinforcement learning", "reward learning", "policy learning"},
	"transformer": {"attention mechanism", "self-attention", "multi-head attention"},
}

// abbreviations maps an abbreviation to its long form.
var abbreviations = map[string]string{
	"ai":   "artificial intelligence",
	"ml":   "machine learning",
	"dl":   "deep learning",
	"cv":   "computer vision",
	"nlp":  "natural language processing",
	"llm":  "large language model",
	"vla":  "vision language action",
	"slam": "simultaneous localization and mapping",
	"rl":   "reinforcement learning",
	"gnn":  "graph neural network",
	"cnn":  "convolutional neural network",
	"rnn":  "recurrent neural network",
	"lstm": "long short term memory",
	"bert": "bidirectional encoder representations from transformers",
	"gpt":  "generative pre-trained transformer",
}

// longFormToAbbreviation is the reverse index of abbreviations, built once
// so a long-form input keyword also pulls in its abbreviation.
var longFormToAbbreviation = reverseAbbreviations()

func reverseAbbreviations() map[string]string {
	rev := make(map[string]string, len(abbreviations))
	for abbr, full := range abbreviations {
		rev[full] = abbr
	}
	return rev
}

// DomainWeights scales relevance contributions by ArXiv category, favoring
// the categories most central to this pipeline's typical interest areas.
var DomainWeights = map[string]float64{
	"cs.AI": 1.5,
	"cs.LG": 1.4,
	"cs.RO": 1.3,
	"cs.CV": 1.2,
	"cs.CL": 1.2,
}

// Expand returns the input keywords plus every synonym and abbreviation
// (in both directions) reachable from them. Idempotent: expanding an
// already-expanded set adds nothing new.
func Expand(keywords []string) []string {
	expanded := make(map[string]bool, len(keywords)*2)
	var order []string
	add := func(s string) {
		if s == "" || expanded[s] {
			return
		}
		expanded[s] = true
		order = append(order, s)
	}

	for _, kw := range keywords {
		add(kw)
		lower := strings.ToLower(kw)

		if full, ok := abbreviations[lower]; ok {
			add(full)
		}
		if abbr, ok := longFormToAbbreviation[lower]; ok {
			add(abbr)
		}
		for synKey, synList := range synonyms {
			if strings.Contains(lower, synKey) || strings.Contains(synKey, lower) {
				for _, syn := range synList {
					add(syn)
				}
			}
		}
	}
	return order
}

// Variants generates the morphological and separator variants of a single
// keyword the required-keyword gate probes before falling back to fuzzy
// similarity: plural, adjectival, and hyphen/space/underscore swaps.
func Variants(keyword string) []string {
	variants := map[string]bool{keyword: true}
	lower := strings.ToLower(keyword)

	if synSet, ok := directSynonyms(lower); ok {
		for _, s := range synSet {
			variants[s] = true
		}
	}

	if !strings.HasSuffix(keyword, "s") {
		variants[keyword+"s"] = true
	}
	if strings.HasSuffix(keyword, "y") {
		variants[keyword[:len(keyword)-1]+"ies"] = true
	}
	if strings.HasSuffix(keyword, "e") {
		variants[keyword[:len(keyword)-1]+"ic"] = true
	} else {
		variants[keyword+"ic"] = true
	}

	if strings.Contains(keyword, " ") {
		variants[strings.ReplaceAll(keyword, " ", "-")] = true
		variants[strings.ReplaceAll(keyword, " ", "_")] = true
		variants[strings.ReplaceAll(keyword, " ", "")] = true
	}
	if strings.Contains(keyword, "-") {
		variants[strings.ReplaceAll(keyword, "-", " ")] = true
		variants[strings.ReplaceAll(keyword, "-", "_")] = true
		variants[strings.ReplaceAll(keyword, "-", "")] = true
	}

	out := make([]string, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	return out
}

func directSynonyms(lower string) ([]string, bool) {
	for synKey, synList := range synonyms {
		if strings.Contains(lower, synKey) || strings.Contains(synKey, lower) {
			return synList, true
		}
	}
	return nil, false
}
