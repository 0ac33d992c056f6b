package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/tblkit/internal/gamedir"
	"github.com/joshuapare/tblkit/internal/resolve"
)

// promptIn feeds interactive prompts.
var promptIn io.Reader = os.Stdin

var errInputClosed = errors.New("input closed before an answer was given")

// prompt reads one answer per line. A single prompt must serve a whole
// command so that buffered input is not lost between questions.
type prompt struct {
	in  *bufio.Reader
	out io.Writer
}

func prompter() *prompt {
	return &prompt{in: bufio.NewReader(promptIn), out: os.Stdout}
}

func (p *prompt) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", errInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPicker asks which of several text or dat folders to use.
func promptPicker(p *prompt) gamedir.Picker {
	return func(what string, options []string) (string, error) {
		fmt.Fprintf(p.out, "Several %s folders found:\n", what)
		for i, o := range options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
		}
		for {
			ans, err := p.ask(fmt.Sprintf("Choose %s folder [1-%d]: ", what, len(options)))
			if err != nil {
				return "", err
			}
			if n, err := strconv.Atoi(ans); err == nil && n >= 1 && n <= len(options) {
				return options[n-1], nil
			}
			for _, o := range options {
				if o == ans {
					return o, nil
				}
			}
			fmt.Fprintf(p.out, "Invalid choice: %q\n", ans)
		}
	}
}

// promptDecider asks the user about each conflict, offering only the
// choices the conflict allows.
type promptDecider struct {
	p *prompt
}

func (d *promptDecider) Decide(c resolve.Conflict) (resolve.Decision, error) {
	out := d.p.out
	fmt.Fprintf(out, "\n%s ID %d is used twice:\n", c.Space, c.ID)
	fmt.Fprintf(out, "  a) %q in %s\n", c.A.Name, c.A.Table)
	fmt.Fprintf(out, "  b) %q in %s\n", c.B.Name, c.B.Table)
	fmt.Fprintf(out, "Options:\n")
	if c.AllowA {
		fmt.Fprintf(out, "  a        renumber a to %d\n", c.Replacement)
	}
	if c.AllowB {
		fmt.Fprintf(out, "  b        renumber b to %d\n", c.Replacement)
	}
	if c.AllowA || c.AllowB {
		fmt.Fprintf(out, "  a|b <id> renumber to an ID of your choice\n")
	}
	fmt.Fprintf(out, "  s        skip\n")

	for {
		ans, err := d.p.ask("Choice: ")
		if err != nil {
			return resolve.Decision{}, err
		}
		dec, err := parseDecision(ans)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		if !c.Allowed(dec.Choice) {
			fmt.Fprintf(out, "%s is not allowed for this conflict\n", dec.Choice)
			continue
		}
		return dec, nil
	}
}

// parseDecision reads "a", "b", "s", optionally followed by a replacement
// ID for a or b.
func parseDecision(s string) (resolve.Decision, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 || len(fields) > 2 {
		return resolve.Decision{}, errors.New("answer a, b or s, optionally followed by an ID")
	}
	choice, err := parseChoice(fields[0])
	if err != nil {
		return resolve.Decision{}, err
	}
	dec := resolve.Decision{Choice: choice}
	if len(fields) == 2 {
		if choice == resolve.Skip {
			return resolve.Decision{}, errors.New("skip takes no ID")
		}
		id, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return resolve.Decision{}, fmt.Errorf("invalid ID %q", fields[1])
		}
		dec.Replacement = uint16(id)
		dec.Override = true
	}
	return dec, nil
}

func parseChoice(s string) (resolve.Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "rename-a":
		return resolve.RenameA, nil
	case "b", "rename-b":
		return resolve.RenameB, nil
	case "s", "skip":
		return resolve.Skip, nil
	default:
		return resolve.Skip, fmt.Errorf("invalid choice: %q (use: a, b, skip)", s)
	}
}

// decisionFile is a scripted set of answers.
//
//	default: skip
//	rules:
//	  - space: item
//	    id: 500
//	    choice: b
//	    replacement: 4321
type decisionFile struct {
	Default string         `yaml:"default"`
	Rules   []decisionRule `yaml:"rules"`
}

type decisionRule struct {
	Space       string `yaml:"space"`
	ID          uint16 `yaml:"id"`
	Choice      string `yaml:"choice"`
	Replacement uint16 `yaml:"replacement,omitempty"`
}

// scriptDecider answers from a decision file. A rule's choice is passed on
// as written; the default falls back to skip where it is not allowed.
type scriptDecider struct {
	def   resolve.Choice
	rules []scriptRule
}

type scriptRule struct {
	space    string // empty matches both spaces
	id       uint16
	decision resolve.Decision
}

func loadDecisions(path string) (*scriptDecider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseDecisions(f)
}

func parseDecisions(r io.Reader) (*scriptDecider, error) {
	var df decisionFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&df); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decisions: %w", err)
	}

	d := &scriptDecider{def: resolve.Skip}
	if df.Default != "" {
		c, err := parseChoice(df.Default)
		if err != nil {
			return nil, fmt.Errorf("decisions: default: %w", err)
		}
		d.def = c
	}
	for i, rule := range df.Rules {
		space := strings.ToLower(rule.Space)
		if space != "" && space != resolve.SpaceItem.String() && space != resolve.SpaceDLC.String() {
			return nil, fmt.Errorf("decisions: rule %d: invalid space %q (use: item, dlc)", i+1, rule.Space)
		}
		c, err := parseChoice(rule.Choice)
		if err != nil {
			return nil, fmt.Errorf("decisions: rule %d: %w", i+1, err)
		}
		sr := scriptRule{space: space, id: rule.ID, decision: resolve.Decision{Choice: c}}
		if rule.Replacement != 0 {
			if c == resolve.Skip {
				return nil, fmt.Errorf("decisions: rule %d: skip takes no replacement", i+1)
			}
			sr.decision.Replacement = rule.Replacement
			sr.decision.Override = true
		}
		d.rules = append(d.rules, sr)
	}
	return d, nil
}

func (d *scriptDecider) Decide(c resolve.Conflict) (resolve.Decision, error) {
	for _, r := range d.rules {
		if r.id == c.ID && (r.space == "" || r.space == c.Space.String()) {
			return r.decision, nil
		}
	}
	if !c.Allowed(d.def) {
		return resolve.Decision{Choice: resolve.Skip}, nil
	}
	return resolve.Decision{Choice: d.def}, nil
}
