// Package agents wraps hosted LLM providers behind a small Client interface
// and builds the three primus agents on top of it.
//
// A Client sends one prompt and returns the reply text. The provider clients
// rate limit, retry transient failures with exponential backoff and scrub
// secrets from every prompt before it leaves the process.
//
// The agents:
//
//	TaskAnalyzer       rates a manual task for automation (JSON report)
//	AutomationBuilder  generates Python automation code for a task
//	WorkflowOptimizer  suggests optimizations for an ordered list of steps
//
// Agent replies are parsed leniently. A reply that is not valid JSON is kept
// in Report.Raw with nil Data; callers decide what to do with it.
package agents
