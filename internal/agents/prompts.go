package agents

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are Primus, an assistant that helps teams find and automate repetitive manual work."

const analyzePrompt = `Analyze this manual task and provide automation recommendations:

Task: %s

Please provide:
1. Task complexity (Low/Medium/High)
2. Automation potential (Low/Medium/High)
3. Required technologies/tools
4. Estimated development time
5. Success criteria

Format as JSON with the keys "complexity", "automation_potential", "technologies",
"estimated_time" and "success_criteria".`

const generatePrompt = `Generate Python code to automate this manual task:

Task: %s

Requirements:
- Use modern Python libraries
- Include error handling
- Add logging
- Make it production-ready
- Include docstrings

Return only the Python code, no explanations.`

const optimizePrompt = `Analyze this workflow and suggest optimizations for automation:

Workflow Steps:
%s

Provide:
1. Bottlenecks identified
2. Automation opportunities
3. Optimized workflow steps
4. Required integrations

Format as JSON with the keys "bottlenecks", "opportunities", "optimized_steps"
and "integrations".`

func buildAnalyzePrompt(task string) string {
	return fmt.Sprintf(analyzePrompt, task)
}

func buildGeneratePrompt(task string) string {
	return fmt.Sprintf(generatePrompt, task)
}

func buildOptimizePrompt(steps []string) string {
	return fmt.Sprintf(optimizePrompt, numberSteps(steps))
}

// numberSteps renders steps as "1. first\n2. second".
func numberSteps(steps []string) string {
	var b strings.Builder
	for i, step := range steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, step)
	}
	return b.String()
}
