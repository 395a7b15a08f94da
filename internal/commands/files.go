package commands

type fileKind int

const (
	kindFile fileKind = iota
	kindFolder
)

type virtualFile struct {
	content string
	kind    fileKind
}

// files is the read-only home directory visitors can browse.
var files = map[string]virtualFile{
	"README.md": {kind: kindFile, content: `# Digital Twin
Full Stack Agent Engineer

Building retrieval-augmented agents and the interfaces around them.
Ask me anything in plain language, or poke around with shell commands.

Location: Digital Space
Status: Online`},
	"resume.pdf": {kind: kindFile, content: ResumeDownloadTrigger},
	"contact.sh": {kind: kindFile, content: ContactFormTrigger},
	".secrets": {kind: kindFile, content: `=======================================================
  TOP SECRET // AUTHORIZED PERSONNEL ONLY
=======================================================

  [LEVEL 1] The answer to everything: 42
  [LEVEL 2] Best debugging tool: a good night's sleep
  [LEVEL 3] Coffee consumption: unbounded

  ACCESS LOGGED: You found the Easter egg!
=======================================================`},
	"projects": {kind: kindFolder, content: "drwxr-xr-x  projects/"},
	"ai-agent.json": {kind: kindFile, content: `{
  "name": "AI Agent Portfolio",
  "tech": ["Go", "Spring Boot", "LangChain", "RAG"],
  "status": "production"
}`},
	"portfolio.ts": {kind: kindFile, content: `// The portfolio you're talking to right now
export const portfolio = {
  frontend: 'Next.js + TypeScript',
  terminal: 'Go + Bubble Tea',
  ai: 'RAG agent over SSE',
  features: ['Real-time chat', 'RAG', 'Command system']
};`},
}

const listing = `drwxr-xr-x  user  staff   192 Jan 13 10:00 .
drwxr-xr-x  root  root    320 Jan 13 09:00 ..
-rw-r--r--  user  staff   420 Jan 14 12:00 README.md
-rwxr-xr-x  user  staff  2.4M Jan 10 15:30 resume.pdf
-rwxr-xr-x  user  staff   128 Jan 14 14:00 contact.sh
drwxr-xr-x  user  staff   --- Jan 01 00:00 projects/
-rw-r--r--  user  staff    64 Jan 15 09:30 .secrets`

const projectsListing = `total 24
drwxr-xr-x  user  staff    64 Jan 15 09:30 .
drwxr-xr-x  root  root    320 Jan 13 09:00 ..
-rw-r--r--  user  staff   256 Jan 15 09:30 ai-agent.json
-rw-r--r--  user  staff   180 Jan 15 09:30 portfolio.ts`

const helpText = `Available Commands:

  File Operations:
    ls, ll          List directory contents
    cat <file>      Display file content
    cd <dir>        Change directory (projects/)

  System Info:
    whoami          Display current user
    date            Show current date/time
    uname [-a]      System information

  Fun Commands:
    sudo <cmd>      Try to get admin access
    rm -rf /        Try to delete everything
    vi, vim, nano   Try to open editor
    clear           Clear terminal screen

  Examples:
    ls projects/    List files in projects folder
    cat README.md   Show README content
    cat contact.sh  Send me a message
    cat resume.pdf  Download my resume

Anything else is sent to the agent.`
