// Package shell generates prompt integration scripts built on
// "murmur status --env".
package shell

import (
	"fmt"
	"io"
	"sort"
)

var scripts = map[string]string{
	"bash": `# murmur prompt integration
__murmur_prompt_hook() {
  eval "$(command murmur status --env 2>/dev/null)"
}

murmur_prompt_info() {
  command murmur status 2>/dev/null
}

if [[ -z "$PROMPT_COMMAND" ]]; then
  PROMPT_COMMAND="__murmur_prompt_hook"
else
  PROMPT_COMMAND="__murmur_prompt_hook;${PROMPT_COMMAND}"
fi

eval "$(command murmur completion bash 2>/dev/null)"
`,
	"zsh": `# murmur prompt integration
__murmur_prompt_hook() {
  eval "$(command murmur status --env 2>/dev/null)"
}

murmur_prompt_info() {
  command murmur status 2>/dev/null
}

autoload -Uz add-zsh-hook
add-zsh-hook precmd __murmur_prompt_hook

eval "$(command murmur completion zsh 2>/dev/null)"
`,
	"fish": `# murmur prompt integration
function __murmur_prompt_hook --on-event fish_prompt
  set -gx MURMUR_PROMPT_TODAY (command murmur status --format '{{.TodayIcon}}' 2>/dev/null)
  set -gx MURMUR_PROMPT_STREAK (command murmur status --format '{{.Streak}}' 2>/dev/null)
end

function murmur_prompt_info
  command murmur status 2>/dev/null
end

command murmur completion fish 2>/dev/null | source
`,
}

// Supported returns the shells WriteInit knows, sorted.
func Supported() []string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteInit writes the integration script for the named shell.
func WriteInit(w io.Writer, shell string) error {
	script, ok := scripts[shell]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: %v)", shell, Supported())
	}
	_, err := io.WriteString(w, script)
	return err
}
