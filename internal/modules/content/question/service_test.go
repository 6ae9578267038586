package question

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qa-overflow/core-go/internal/models"
)

// mockService wires the service to a sqlmock connection so tests can
// assert the exact statements the store issues, row locking included.
func mockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	return NewService(db, zap.NewNop()), mock
}

func questionRows(id string, hasAIResponse bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "has_ai_response"}).AddRow(id, hasAIResponse)
}

func answerRows(rows ...[]driverValue) *sqlmock.Rows {
	r := sqlmock.NewRows([]string{"id", "question_id", "is_ai_generated", "ai_validation_status"})
	for _, row := range rows {
		r.AddRow(row[0], row[1], row[2], row[3])
	}
	return r
}

type driverValue = interface{}

func pendingAIAnswer(answerID, questionID string) []driverValue {
	return []driverValue{answerID, questionID, true, "pending"}
}

func TestAppendAnswerRejectsSecondPendingAI(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `questions`(.+)FOR UPDATE").
		WillReturnRows(questionRows("q1", true))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `answers`").
		WithArgs("q1", true, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.AppendAnswer("q1", &models.AnswerModel{
		IsAIGenerated:      true,
		AIValidationStatus: models.AIValidationPending,
	})
	require.ErrorIs(t, err, ErrPendingAIExists)
	// An attempted INSERT would have surfaced as an unexpected statement.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAnswerPersistsAIAnswerAndFlipsFlag(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `questions`(.+)FOR UPDATE").
		WillReturnRows(questionRows("q1", false))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `answers`").
		WithArgs("q1", true, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `answers`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `questions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM `questions`").
		WillReturnRows(questionRows("q1", true))
	mock.ExpectQuery("SELECT (.+) FROM `answers`").
		WillReturnRows(answerRows(pendingAIAnswer("a1", "q1")))

	q, err := svc.AppendAnswer("q1", &models.AnswerModel{
		Text:               "<p>Use flexbox.</p>",
		IsAIGenerated:      true,
		AIValidationStatus: models.AIValidationPending,
	})
	require.NoError(t, err)
	assert.True(t, q.HasAIResponse)
	require.NotNil(t, q.PendingAIAnswer())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAnswerAllowsHumanAnswerAlongsidePendingAI(t *testing.T) {
	svc, mock := mockService(t)

	// No pending-count query and no flag update for a human answer: the
	// insert follows the row lock directly.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `questions`(.+)FOR UPDATE").
		WillReturnRows(questionRows("q1", true))
	mock.ExpectExec("INSERT INTO `answers`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM `questions`").
		WillReturnRows(questionRows("q1", true))
	mock.ExpectQuery("SELECT (.+) FROM `answers`").
		WillReturnRows(answerRows(
			pendingAIAnswer("a1", "q1"),
			[]driverValue{"a2", "q1", false, "none"},
		))

	q, err := svc.AppendAnswer("q1", &models.AnswerModel{Text: "Use grid."})
	require.NoError(t, err)
	assert.Len(t, q.Answers, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAnswerQuestionNotFound(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `questions`(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.AppendAnswer("missing", &models.AnswerModel{IsAIGenerated: true})
	require.ErrorIs(t, err, ErrQuestionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetValidationStatusApprovesPendingAnswer(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `answers`(.+)FOR UPDATE").
		WillReturnRows(answerRows(pendingAIAnswer("a1", "q1")))
	mock.ExpectExec("UPDATE `answers` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM `questions`").
		WillReturnRows(questionRows("q1", true))
	mock.ExpectQuery("SELECT (.+) FROM `answers`").
		WillReturnRows(answerRows([]driverValue{"a1", "q1", true, "approved"}))

	q, err := svc.SetValidationStatus("q1", "a1", models.AIValidationApproved, "mod-1", time.Now())
	require.NoError(t, err)
	require.Len(t, q.Answers, 1)
	assert.Equal(t, models.AIValidationApproved, q.Answers[0].AIValidationStatus)
	assert.Nil(t, q.PendingAIAnswer())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetValidationStatusRejectsSecondDecision(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `answers`(.+)FOR UPDATE").
		WillReturnRows(answerRows([]driverValue{"a1", "q1", true, "approved"}))
	mock.ExpectRollback()

	_, err := svc.SetValidationStatus("q1", "a1", models.AIValidationRejected, "mod-1", time.Now())
	require.ErrorIs(t, err, ErrAlreadyValidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetValidationStatusRejectsHumanAnswer(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `answers`(.+)FOR UPDATE").
		WillReturnRows(answerRows([]driverValue{"a1", "q1", false, "none"}))
	mock.ExpectRollback()

	_, err := svc.SetValidationStatus("q1", "a1", models.AIValidationApproved, "mod-1", time.Now())
	require.ErrorIs(t, err, ErrNotAIAnswer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetValidationStatusAnswerMissing(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `answers`(.+)FOR UPDATE").
		WillReturnRows(answerRows())
	mock.ExpectQuery("SELECT (.+) FROM `questions`").
		WillReturnRows(questionRows("q1", false))
	mock.ExpectRollback()

	_, err := svc.SetValidationStatus("q1", "missing", models.AIValidationApproved, "mod-1", time.Now())
	require.ErrorIs(t, err, ErrAnswerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetValidationStatusQuestionMissing(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `answers`(.+)FOR UPDATE").
		WillReturnRows(answerRows())
	mock.ExpectQuery("SELECT (.+) FROM `questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.SetValidationStatus("missing", "a1", models.AIValidationApproved, "mod-1", time.Now())
	require.ErrorIs(t, err, ErrQuestionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSolvedMissingQuestion(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectExec("UPDATE `questions` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.MarkSolved("missing", "mod-1")
	require.ErrorIs(t, err, ErrQuestionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSolvedUpdatesQuestion(t *testing.T) {
	svc, mock := mockService(t)

	mock.ExpectExec("UPDATE `questions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM `questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "solved_by"}).
			AddRow("q1", "solved", "mod-1"))
	mock.ExpectQuery("SELECT (.+) FROM `answers`").
		WillReturnRows(answerRows())

	q, err := svc.MarkSolved("q1", "mod-1")
	require.NoError(t, err)
	assert.Equal(t, models.QuestionSolved, q.Status)
	require.NotNil(t, q.SolvedByID)
	assert.Equal(t, "mod-1", *q.SolvedByID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
