package catalog

var builtinFormats = []OutputFormat{
	{
		ID:          "text",
		Name:        "Plain Text",
		Description: "Natural language response",
		Template:    "Provide your response in clear, well-structured plain text.",
	},
	{
		ID:          "markdown",
		Name:        "Markdown",
		Description: "Formatted markdown with headers and lists",
		Template: `Format your response in Markdown with:
- Clear headers (##, ###)
- Bullet points and numbered lists
- **Bold** and *italic* emphasis
- Code blocks where appropriate
- Tables if needed`,
	},
	{
		ID:          "json",
		Name:        "JSON",
		Description: "Structured JSON object",
		Template: `Respond only with a single, valid JSON object, and no other text or explanation.

Your response must follow this structure:
{
  "summary": "Brief overview",
  "analysis": "Detailed analysis",
  "recommendations": ["item1", "item2"],
  "confidence": 0.95,
  "metadata": {
    "technique": "method_used",
    "timestamp": "ISO_date"
  }
}`,
	},
	{
		ID:          "xml",
		Name:        "XML",
		Description: "Structured XML format",
		Template: `Respond only with a single, well-formed XML response, and no other text or explanation.

Your response must follow this structure:
<?xml version="1.0" encoding="UTF-8"?>
<response>
  <summary>Brief overview</summary>
  <analysis>Detailed analysis</analysis>
  <recommendations>
    <item>Recommendation 1</item>
    <item>Recommendation 2</item>
  </recommendations>
  <metadata>
    <confidence>0.95</confidence>
    <technique>method_used</technique>
  </metadata>
</response>`,
	},
}
