package quiz

import (
	"errors"
	"testing"

	"wikiquiz/internal/model"
)

const wellFormedResponse = `{
  "quiz": [
    {
      "question": "In which year was the Turing machine described?",
      "options": ["1936", "1945", "1950", "1962"],
      "answer": "1936",
      "difficulty": "easy",
      "explanation": "Turing described the machine in his 1936 paper.",
      "section": "Career"
    },
    {
      "question": "Where did Turing work during the war?",
      "options": ["Bletchley Park", "Los Alamos", "Cambridge", "Manchester"],
      "answer": "Bletchley Park",
      "difficulty": "medium",
      "explanation": "He led Hut 8 at Bletchley Park."
    }
  ],
  "related_topics": ["Cryptanalysis", "Enigma machine", "Computability"]
}`

func TestDecodeWellFormed(t *testing.T) {
	quiz, err := Decode(wellFormedResponse)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(quiz.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(quiz.Questions))
	}

	q := quiz.Questions[0]
	if q.Answer != "1936" {
		t.Errorf("Answer = %q, want %q", q.Answer, "1936")
	}
	if len(q.Options) != 4 {
		t.Errorf("got %d options, want 4", len(q.Options))
	}
	if q.Difficulty != model.DifficultyEasy {
		t.Errorf("Difficulty = %q, want %q", q.Difficulty, model.DifficultyEasy)
	}
	if q.Section != "Career" {
		t.Errorf("Section = %q, want %q", q.Section, "Career")
	}
	if quiz.Questions[1].Section != "" {
		t.Errorf("missing section should stay empty, got %q", quiz.Questions[1].Section)
	}

	if len(quiz.RelatedTopics) != 3 {
		t.Errorf("got %d related topics, want 3", len(quiz.RelatedTopics))
	}
}

func TestDecodeFencedResponse(t *testing.T) {
	raw := "Here is the quiz you asked for:\n```json\n" + wellFormedResponse + "\n```\nLet me know if you need more."

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(quiz.Questions) != 2 {
		t.Errorf("got %d questions, want 2", len(quiz.Questions))
	}
}

func TestDecodeSurroundingCommentary(t *testing.T) {
	raw := "Sure! " + wellFormedResponse + " Hope this helps."

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(quiz.Questions) != 2 {
		t.Errorf("got %d questions, want 2", len(quiz.Questions))
	}
}

func TestDecodeTrailingCommas(t *testing.T) {
	raw := `{
  "quiz": [
    {
      "question": "Q1?",
      "options": ["A", "B", "C", "D",],
      "answer": "A",
      "difficulty": "hard",
    },
  ],
  "related_topics": ["T1",],
}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(quiz.Questions))
	}
	if quiz.Questions[0].Difficulty != model.DifficultyHard {
		t.Errorf("Difficulty = %q, want %q", quiz.Questions[0].Difficulty, model.DifficultyHard)
	}
}

func TestDecodeTruncatedResponse(t *testing.T) {
	// Token limits cut responses mid-string; the structural repair closes
	// the string and balances the brackets.
	raw := `{"quiz": [{"question": "Q1?", "options": ["A", "B", "C", "D"], "answer": "A", "difficulty": "easy", "explanation": "Because A is corr`

	quiz, err := Decode(raw + "}")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(quiz.Questions))
	}
	if quiz.Questions[0].Answer != "A" {
		t.Errorf("Answer = %q, want %q", quiz.Questions[0].Answer, "A")
	}
}

func TestDecodeUnknownDifficulty(t *testing.T) {
	raw := `{"quiz": [
		{"question": "Q1?", "options": ["A", "B", "C", "D"], "answer": "A", "difficulty": "Very Hard"},
		{"question": "Q2?", "options": ["A", "B", "C", "D"], "answer": "B", "difficulty": "MEDIUM"}
	]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if quiz.Questions[0].Difficulty != model.DifficultyMedium {
		t.Errorf("unknown difficulty should coerce to medium, got %q", quiz.Questions[0].Difficulty)
	}
	if quiz.Questions[1].Difficulty != model.DifficultyMedium {
		t.Errorf("difficulty should be case-normalized, got %q", quiz.Questions[1].Difficulty)
	}
}

func TestDecodeAnswerNotInOptions(t *testing.T) {
	raw := `{"quiz": [{"question": "Q1?", "options": ["A", "B", "C"], "answer": "D", "difficulty": "easy"}]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	q := quiz.Questions[0]
	if len(q.Options) != 4 {
		t.Fatalf("got %d options, want 4: %v", len(q.Options), q.Options)
	}
	if q.Options[3] != "D" {
		t.Errorf("answer should be appended to options, got %v", q.Options)
	}
}

func TestDecodeMissingOptions(t *testing.T) {
	raw := `{"quiz": [{"question": "Q1?", "answer": "True", "difficulty": "easy"}]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	q := quiz.Questions[0]
	if len(q.Options) != 2 || q.Options[0] != "True" || q.Options[1] != "False" {
		t.Errorf("missing options should get the placeholder pair, got %v", q.Options)
	}
}

func TestDecodeOversizedOptions(t *testing.T) {
	raw := `{"quiz": [{"question": "Q1?", "options": ["A", "B", "C", "D", "E", "F"], "answer": "F", "difficulty": "easy"}]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	q := quiz.Questions[0]
	if len(q.Options) != 4 {
		t.Fatalf("got %d options, want 4: %v", len(q.Options), q.Options)
	}
	found := false
	for _, o := range q.Options {
		if o == "F" {
			found = true
		}
	}
	if !found {
		t.Errorf("trimming must keep the answer, got %v", q.Options)
	}
}

func TestDecodeNumericOptions(t *testing.T) {
	raw := `{"quiz": [{"question": "Q1?", "options": [1936, 1945, 1950, 1962], "answer": "1936", "difficulty": "easy"}]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	q := quiz.Questions[0]
	if len(q.Options) != 4 {
		t.Fatalf("got %d options, want 4: %v", len(q.Options), q.Options)
	}
	if q.Options[0] != "1936" {
		t.Errorf("numeric options should stringify, got %v", q.Options)
	}
}

func TestDecodeSubstituteQuizField(t *testing.T) {
	raw := `{"questions": [{"question": "Q1?", "options": ["A", "B", "C", "D"], "answer": "A", "difficulty": "easy"}], "related_topics": ["T1"]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Errorf("got %d questions, want 1", len(quiz.Questions))
	}
	if len(quiz.RelatedTopics) != 1 {
		t.Errorf("got %d related topics, want 1", len(quiz.RelatedTopics))
	}
}

func TestDecodeSkipsNonObjectElements(t *testing.T) {
	raw := `{"quiz": [{"question": "Q1?", "options": ["A", "B", "C", "D"], "answer": "A", "difficulty": "easy"}, "not a question", 42]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Errorf("non-object elements should be dropped, got %d questions", len(quiz.Questions))
	}
}

func TestDecodeRelatedTopicsCap(t *testing.T) {
	raw := `{"quiz": [{"question": "Q1?", "options": ["A", "B", "C", "D"], "answer": "A", "difficulty": "easy"}],
		"related_topics": ["T1", "T2", "T3", "T4", "T5", "T6", "T7"]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(quiz.RelatedTopics) != model.MaxRelatedTopics {
		t.Errorf("got %d related topics, want %d", len(quiz.RelatedTopics), model.MaxRelatedTopics)
	}
}

func TestDecodeMissingRelatedTopics(t *testing.T) {
	raw := `{"quiz": [{"question": "Q1?", "options": ["A", "B", "C", "D"], "answer": "A", "difficulty": "easy"}]}`

	quiz, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if quiz.RelatedTopics == nil {
		t.Error("RelatedTopics should be an empty list, not nil")
	}
	if len(quiz.RelatedTopics) != 0 {
		t.Errorf("got %d related topics, want 0", len(quiz.RelatedTopics))
	}
}

func TestDecodeProseResponse(t *testing.T) {
	_, err := Decode("I'm sorry, I cannot produce a quiz for this article.")
	if err == nil {
		t.Fatal("Decode() should fail on prose")
	}
	if !errors.Is(err, model.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestDecodeEmptyQuizArray(t *testing.T) {
	_, err := Decode(`{"quiz": [], "related_topics": []}`)
	if err == nil {
		t.Fatal("Decode() should fail on an empty quiz array")
	}
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestDecodeNoQuizField(t *testing.T) {
	_, err := Decode(`{"message": "here is your quiz"}`)
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestDecodeTopLevelArray(t *testing.T) {
	// The candidate slice runs from the first '{' to the last '}', so a
	// top-level array decodes as its first object and fails validation.
	_, err := Decode(`[{"question": "Q1?"}]`)
	if err == nil {
		t.Fatal("Decode() should fail")
	}
	if !errors.Is(err, model.ErrValidation) && !errors.Is(err, model.ErrParse) {
		t.Errorf("error = %v, want ErrValidation or ErrParse", err)
	}
}
