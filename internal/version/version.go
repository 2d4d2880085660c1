package version

// Version is the current PromptForge release.
const Version = "0.3.0"
