// Package extraction finds candidate manual tasks in free text.
//
// A TaskExtractor applies an ordered table of cue phrase rules ("manual
// process:", "currently done manually:", ...). Every rule runs over the whole
// text; the first capture group of each match, trimmed, is one task
// description. Results from all rules are merged into a TaskSet by exact
// string value, so near-duplicates that differ in case or spacing are kept
// apart.
//
// Extraction is a pure function of its input: no I/O, no errors, and the
// same text always yields the same set.
//
//	extractor := extraction.NewDefaultExtractor()
//	tasks := extractor.Extract("Currently done manually: data entry process.")
//	for _, task := range tasks.Sorted() {
//	    fmt.Println(task)
//	}
//
// The package also holds the keyword based WorkflowAnalyzer, which turns a
// workflow description into fixed automation recommendations without
// calling an LLM.
package extraction
