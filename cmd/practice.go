package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sqldrill/internal/grade"
	"github.com/abhisek/sqldrill/internal/progress"
	"github.com/abhisek/sqldrill/internal/quiz"
	"github.com/abhisek/sqldrill/internal/store"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start an interactive practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd)
	},
}

func init() {
	practiceCmd.Flags().Int("limit", 10, "Maximum number of questions in the session")
	practiceCmd.Flags().String("type", "", "Only questions of this type (multiple_choice, true_false, fill_blank, short_answer)")
	practiceCmd.Flags().Int("difficulty", 0, "Only questions of this difficulty (1-3)")
}

func runPractice(cmd *cobra.Command) error {
	ctx := cmd.Context()

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if n, err := a.store.Seed(ctx); err != nil {
		return fmt.Errorf("seed question bank: %w", err)
	} else if n > 0 {
		fmt.Printf("Loaded %d starter questions.\n", n)
	}

	filter, err := practiceFilter(cmd)
	if err != nil {
		return err
	}
	questions, err := a.store.QuestionRepo().Active(ctx, filter)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		fmt.Println("No questions match. Try different filters or run `sqldrill seed`.")
		return nil
	}

	provider, llmTimeout := a.newProvider(ctx)
	var grader quiz.Grader
	var explainer progress.Explainer
	if provider != nil {
		grader = grade.NewGrader(provider, a.cache, a.log, llmTimeout)
		explainer = grade.NewExplainer(provider, a.log, llmTimeout)
	}

	writer := progress.NewAttemptWriter(a.store.AttemptRepo(), a.log, 0)
	defer writer.Close()

	ctrl := progress.NewController(a.userID, questions,
		quiz.NewEvaluator(grader, a.log), writer, explainer,
		a.store.QuestionRepo(), progress.DefaultDelays(), a.log)
	defer ctrl.Close()

	advanced := make(chan *quiz.Question, 1)
	ctrl.OnAdvance = func(q *quiz.Question) {
		select {
		case advanced <- q:
		default:
		}
	}

	fmt.Printf("Starting session: %d questions. Type 'help' for commands.\n", len(questions))
	runSessionLoop(ctx, ctrl, advanced)
	return nil
}

func practiceFilter(cmd *cobra.Command) (store.QuestionFilter, error) {
	var f store.QuestionFilter
	f.Limit, _ = cmd.Flags().GetInt("limit")
	if f.Limit <= 0 {
		// Running via the bare root command, which has no session flags.
		f.Limit = 10
	}

	if t, _ := cmd.Flags().GetString("type"); t != "" {
		qt, err := quiz.ParseQuestionType(t)
		if err != nil {
			return f, err
		}
		f.Type = qt
	}
	if d, _ := cmd.Flags().GetInt("difficulty"); d != 0 {
		f.Difficulty = quiz.Difficulty(d)
	}
	return f, nil
}

func runSessionLoop(ctx context.Context, ctrl *progress.Controller, advanced <-chan *quiz.Question) {
	in := bufio.NewScanner(os.Stdin)

	current := ctrl.Current()
	printQuestion(ctrl, current)

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())

		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return
		case "help", "?":
			printHelp()
			continue
		case "next", "n":
			current = ctrl.Next()
			printQuestion(ctrl, current)
			continue
		case "prev", "p":
			current = ctrl.Prev()
			printQuestion(ctrl, current)
			continue
		case "retry", "r":
			ctrl.Retry()
			printQuestion(ctrl, ctrl.Current())
			continue
		case "explain", "e":
			fmt.Println(ctrl.Explanation(ctx))
			continue
		case "":
			continue
		}

		ev, err := ctrl.Submit(ctx, line)
		switch {
		case errors.Is(err, quiz.ErrEmptyAnswer):
			fmt.Println("Please enter an answer.")
			continue
		case err != nil:
			fmt.Println("Could not evaluate answer:", err)
			continue
		}

		if ev.Correct {
			fmt.Printf("Correct! (score %.2f)\n", ev.Score)
			if ev.Feedback != "" {
				fmt.Println(ev.Feedback)
			}
			next := <-advanced
			if next == current {
				fmt.Println("Session complete. Run `sqldrill stats` to review.")
				return
			}
			current = next
			printQuestion(ctrl, current)
		} else {
			fmt.Printf("Incorrect. (score %.2f)\n", ev.Score)
			if ev.Feedback != "" {
				fmt.Println(ev.Feedback)
			}
			fmt.Println("Type 'retry' to try again, 'explain' for the explanation, or 'next' to move on.")
		}
	}
}

func printQuestion(ctrl *progress.Controller, q *quiz.Question) {
	if q == nil {
		fmt.Println("No question to show.")
		return
	}
	idx, total := ctrl.Index()
	fmt.Printf("\n[%d/%d] (%s, %s)\n%s\n", idx+1, total, q.Type, q.Difficulty, q.Body)
	for _, opt := range q.Options {
		fmt.Printf("  %s) %s\n", opt.Label, opt.Text)
	}
}

func printHelp() {
	fmt.Println(`Commands:
  <answer>   submit an answer ("A,C" or "1,3" by option position, "true", or free text)
  retry      try the same question again
  next/prev  navigate (cancels a pending auto-advance)
  explain    show the explanation for the current question
  quit       end the session`)
}
