package pattern

import (
	"strings"
)

// Segments parses route pattern text into its ordered segment list.
//
// Grammar, token by token (tokens are separated by whitespace):
//
//	deploy                     literal
//	{env}                      parameter (string)
//	{count:int}                typed parameter
//	{tag?} {count:int?}        optional parameter
//	{*rest} {*ids:int}         catch-all (last segment, at most one)
//	--dry-run                  option (required for the route to match)
//	--dry-run?                 optional option
//	--verbose,-v               option with short form
//	--id {id:int}              option with typed value
//	--id {id:int}*             repeated option with typed value
//
// Enforced invariants: at most one catch-all and it must be last; option
// names are unique within a pattern; short forms are single characters.
func Segments(text string) ([]Segment, error) {
	var segs []Segment
	seenOptions := make(map[string]bool)
	tokens := tokenize(text)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case strings.HasPrefix(tok.text, "--"):
			opt, consumed, err := parseOption(text, tok, tokens, i)
			if err != nil {
				return nil, err
			}
			if seenOptions[opt.Name] {
				return nil, &ParseError{Pattern: text, Offset: tok.offset, Message: "duplicate option --" + opt.Name}
			}
			seenOptions[opt.Name] = true
			segs = append(segs, opt)
			i += consumed
		case strings.HasPrefix(tok.text, "-") && len(tok.text) > 1:
			// Short-only flag, e.g. "-i". The long identity is the short name.
			name := tok.text[1:]
			if len(name) != 1 {
				return nil, &ParseError{Pattern: text, Offset: tok.offset, Message: "short option must be a single character"}
			}
			if seenOptions[name] {
				return nil, &ParseError{Pattern: text, Offset: tok.offset, Message: "duplicate option -" + name}
			}
			seenOptions[name] = true
			segs = append(segs, Segment{Kind: KindOption, Name: name, Short: name, Required: true})
		case strings.HasPrefix(tok.text, "{"):
			seg, err := parseBrace(text, tok)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
		default:
			segs = append(segs, Segment{Kind: KindLiteral, Text: tok.text})
		}
	}
	// Catch-all placement check.
	for i, s := range segs {
		if s.Kind == KindCatchAll && !lastPositional(segs, i) {
			return nil, &ParseError{Pattern: text, Offset: 0, Message: "catch-all must be the last positional segment"}
		}
	}
	// Optional placement check: positional matching assigns left to right,
	// so a required slot after an optional one could never be filled
	// unambiguously.
	optSeen := false
	for _, s := range segs {
		switch s.Kind {
		case KindParam:
			if s.Optional {
				optSeen = true
			} else if optSeen {
				return nil, &ParseError{Pattern: text, Offset: 0, Message: "required parameter {" + s.Name + "} cannot follow an optional parameter"}
			}
		case KindLiteral:
			if optSeen {
				return nil, &ParseError{Pattern: text, Offset: 0, Message: "literal " + s.Text + " cannot follow an optional parameter"}
			}
		}
	}
	return segs, nil
}

// lastPositional reports whether no positional segment follows index i.
// Options may appear after a catch-all in pattern text.
func lastPositional(segs []Segment, i int) bool {
	for _, s := range segs[i+1:] {
		if s.Kind != KindOption {
			return false
		}
	}
	return true
}

type token struct {
	text   string
	offset int
}

func tokenize(text string) []token {
	var toks []token
	i := 0
	for i < len(text) {
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		if i >= len(text) {
			break
		}
		start := i
		for i < len(text) && text[i] != ' ' && text[i] != '\t' {
			i++
		}
		toks = append(toks, token{text: text[start:i], offset: start})
	}
	return toks
}

// parseBrace parses {name}, {name:type}, {name?}, {name:type?}, {*name} and
// {*name:type} tokens.
func parseBrace(pattern string, tok token) (Segment, error) {
	body, ok := strings.CutPrefix(tok.text, "{")
	if !ok || !strings.HasSuffix(body, "}") {
		return Segment{}, &ParseError{Pattern: pattern, Offset: tok.offset, Message: "malformed parameter token"}
	}
	body = strings.TrimSuffix(body, "}")
	if body == "" {
		return Segment{}, &ParseError{Pattern: pattern, Offset: tok.offset, Message: "empty parameter"}
	}
	catchAll := strings.HasPrefix(body, "*")
	if catchAll {
		body = body[1:]
	}
	optional := strings.HasSuffix(body, "?")
	if optional {
		body = strings.TrimSuffix(body, "?")
	}
	name, typ, hasType := strings.Cut(body, ":")
	if !hasType {
		typ = TypeString
	}
	if name == "" {
		return Segment{}, &ParseError{Pattern: pattern, Offset: tok.offset, Message: "parameter has no name"}
	}
	if typ == "" {
		return Segment{}, &ParseError{Pattern: pattern, Offset: tok.offset, Message: "parameter has empty type"}
	}
	if catchAll {
		if optional {
			return Segment{}, &ParseError{Pattern: pattern, Offset: tok.offset, Message: "catch-all cannot be optional"}
		}
		return Segment{Kind: KindCatchAll, Name: name, Type: typ}, nil
	}
	return Segment{Kind: KindParam, Name: name, Type: typ, Optional: optional}, nil
}

// parseOption parses a --long token and, when the next token is a brace
// parameter, folds it in as the option's value. It returns how many extra
// tokens were consumed.
func parseOption(pattern string, tok token, tokens []token, i int) (Segment, int, error) {
	body := strings.TrimPrefix(tok.text, "--")
	required := true
	repeated := false
	if strings.HasSuffix(body, "?") {
		required = false
		body = strings.TrimSuffix(body, "?")
	}
	long, short, hasShort := strings.Cut(body, ",")
	if hasShort {
		short = strings.TrimPrefix(short, "-")
		if len(short) != 1 {
			return Segment{}, 0, &ParseError{Pattern: pattern, Offset: tok.offset, Message: "short form must be a single character"}
		}
	}
	if long == "" {
		return Segment{}, 0, &ParseError{Pattern: pattern, Offset: tok.offset, Message: "option has no name"}
	}
	opt := Segment{Kind: KindOption, Name: long, Short: short, Required: required}
	consumed := 0
	if i+1 < len(tokens) && strings.HasPrefix(tokens[i+1].text, "{") {
		next := tokens[i+1]
		raw := next.text
		if strings.HasSuffix(raw, "*") {
			repeated = true
			next.text = strings.TrimSuffix(raw, "*")
		}
		if strings.HasSuffix(next.text, "}?") {
			// "--tag {t}?" marks the whole option optional.
			opt.Required = false
			next.text = strings.TrimSuffix(next.text, "?")
		}
		val, err := parseBrace(pattern, next)
		if err != nil {
			return Segment{}, 0, err
		}
		if val.Kind != KindParam {
			return Segment{}, 0, &ParseError{Pattern: pattern, Offset: next.offset, Message: "option value must be a parameter"}
		}
		opt.Value = &val
		opt.Repeated = repeated
		consumed = 1
	}
	return opt, consumed, nil
}
