package roll

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/keshon/cmdhost/pkg/cmd"
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}
)

// maxValue bounds numbers and products so a formula can never overflow int.
const maxValue = 1_000_000_000

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type term struct {
	value int
	desc  string
	op    string
}

// Result of a dice formula.
type Result struct {
	Formula     string
	Calculation string
	Total       int
}

func (r Result) String() string {
	return fmt.Sprintf("%s => %s = %d", r.Formula, r.Calculation, r.Total)
}

// Evaluate rolls a formula such as "2d6+1d4*2-3". intn returns a value in
// [0, n) and is rand.Intn outside tests. Multiplication and division bind
// tighter than addition and subtraction; division truncates.
func Evaluate(formula string, intn func(n int) int) (Result, error) {
	formula = strings.ReplaceAll(formula, " ", "")
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 {
		return Result{}, errors.New("can't parse your formula, try something like 2d6+1d4*2-3")
	}

	var terms []term
	op := "+"
	for _, token := range tokens {
		if validOps[token] {
			op = token
			continue
		}
		val, desc, err := evaluateToken(token, intn)
		if err != nil {
			return Result{}, fmt.Errorf("failed to evaluate %s: %w", token, err)
		}
		terms = append(terms, term{value: val, desc: desc, op: op})
	}

	var merged []term
	for _, t := range terms {
		if t.op != "*" && t.op != "/" {
			merged = append(merged, t)
			continue
		}
		if len(merged) == 0 {
			return Result{}, errors.New("can't multiply or divide by nothing")
		}
		prev := merged[len(merged)-1]
		merged = merged[:len(merged)-1]

		val := prev.value * t.value
		if t.op == "*" && (abs(prev.value) > maxValue || abs(t.value) > maxValue || abs(val) > maxValue) {
			return Result{}, fmt.Errorf("too big. results are capped at %d", maxValue)
		}
		if t.op == "/" {
			if t.value == 0 {
				return Result{}, errors.New("can't divide by zero")
			}
			val = prev.value / t.value
		}
		merged = append(merged, term{
			value: val,
			desc:  fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc),
			op:    prev.op,
		})
	}

	total := 0
	var details []string
	for _, t := range merged {
		if len(details) > 0 {
			details = append(details, " "+t.op+" ")
		}
		details = append(details, t.desc)
		if t.op == "-" {
			total -= t.value
		} else {
			total += t.value
		}
	}

	return Result{Formula: formula, Calculation: strings.Join(details, ""), Total: total}, nil
}

func evaluateToken(token string, intn func(n int) int) (int, string, error) {
	if m := diceRegex.FindStringSubmatch(token); m != nil {
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, "", errors.New("invalid dice count")
			}
			count = n
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 2 {
			return 0, "", errors.New("invalid dice sides")
		}
		if count > 100 || sides > 1000 {
			return 0, "", errors.New("too big. max 100 dice, 1000 sides")
		}

		sum := 0
		rolls := make([]string, 0, count)
		for i := 0; i < count; i++ {
			r := intn(sides) + 1
			sum += r
			rolls = append(rolls, strconv.Itoa(r))
		}
		return sum, fmt.Sprintf("%s [%s]", token, strings.Join(rolls, ", ")), nil
	}

	num, err := strconv.Atoi(token)
	if err != nil {
		return 0, "", errors.New("not a number or dice")
	}
	if num > maxValue {
		return 0, "", fmt.Errorf("too big. max number is %d", maxValue)
	}
	return num, strconv.Itoa(num), nil
}

// Command rolls dice for whoever invokes it.
type Command struct {
	*cmd.Descriptor
	intn func(n int) int
}

// New builds the roll command and registers it with reg.
func New(reg *cmd.Registry, mws ...cmd.Middleware) cmd.Command {
	c := &Command{intn: rand.Intn}
	c.Descriptor = cmd.NewDescriptor(reg, cmd.Spec{
		Names:       []string{"roll", "dice"},
		Usage:       "Usage: /$c <formula>, e.g. /$c 2d20+1d6-2",
		Description: "Roll dice like 2d20+1d6-2",
		MinArgs:     1,
		MaxArgs:     cmd.Unbounded,
	})
	return cmd.Mount(c, mws...)
}

func (c *Command) Invoke(s cmd.Sender, args []string) bool {
	res, err := Evaluate(strings.Join(args, ""), c.intn)
	if err != nil {
		_ = s.SendMessage(err.Error())
		return false
	}
	if err := s.SendMessage(res.String()); err != nil {
		c.Logger().Warn().Err(err).Str("sender", s.Name()).Msg("failed to send roll result")
	}
	return true
}
