package services

import (
	"errors"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/testfixtures"
)

func (suite *ServiceTestSuite) feedbackInput(meetingID uint64) CreateFeedbackInput {
	return CreateFeedbackInput{
		MeetingID:   meetingID,
		Subject:     "Cantine",
		Description: "Les menus végétariens manquent le vendredi.",
		Category:    models.FeedbackCategoryWorkingConditions,
	}
}

func (suite *ServiceTestSuite) TestFeedbackDeadlineScenario() {
	deadline := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithFeedbackDeadline(deadline))

	suite.clock.Set(deadline.Add(-time.Second))
	feedback, err := suite.feedbacks.CreateFeedback(suite.ctx, suite.actor(suite.member), suite.feedbackInput(meeting.ID))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.FeedbackStatusPending, feedback.Status)

	suite.clock.Set(deadline.Add(time.Second))
	subject := "Cantine et pauses"
	_, err = suite.feedbacks.UpdateFeedback(suite.ctx, suite.actor(suite.member), feedback.ID, UpdateFeedbackInput{Subject: &subject})
	var passed *DeadlinePassedError
	suite.Require().True(errors.As(err, &passed))
	assert.True(suite.T(), deadline.Equal(passed.Deadline))

	updated, err := suite.feedbacks.UpdateFeedback(suite.ctx, suite.actor(suite.admin), feedback.ID, UpdateFeedbackInput{Subject: &subject})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), subject, updated.Subject)
}

func (suite *ServiceTestSuite) TestCreateFeedback_DeadlineInclusive() {
	deadline := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithFeedbackDeadline(deadline))

	suite.clock.Set(deadline)
	_, err := suite.feedbacks.CreateFeedback(suite.ctx, suite.actor(suite.member), suite.feedbackInput(meeting.ID))
	suite.Require().NoError(err)

	suite.clock.Set(deadline.Add(time.Millisecond))
	_, err = suite.feedbacks.CreateFeedback(suite.ctx, suite.actor(suite.member), suite.feedbackInput(meeting.ID))
	assert.ErrorIs(suite.T(), err, ErrDeadlinePassed)
}

func (suite *ServiceTestSuite) TestCreateFeedback_NoDeadline() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)

	suite.clock.Set(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err := suite.feedbacks.CreateFeedback(suite.ctx, suite.actor(suite.member), suite.feedbackInput(meeting.ID))
	assert.NoError(suite.T(), err)
}

func (suite *ServiceTestSuite) TestCreateFeedback_Validation() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)

	input := suite.feedbackInput(meeting.ID)
	input.Subject = "ab"
	_, err := suite.feedbacks.CreateFeedback(suite.ctx, suite.actor(suite.member), input)
	var verr *ValidationError
	suite.Require().True(errors.As(err, &verr))
	assert.Equal(suite.T(), "subject", verr.Field)

	input = suite.feedbackInput(meeting.ID)
	input.Description = "Trop bref"
	_, err = suite.feedbacks.CreateFeedback(suite.ctx, suite.actor(suite.member), input)
	suite.Require().True(errors.As(err, &verr))
	assert.Equal(suite.T(), "description", verr.Field)

	input = suite.feedbackInput(meeting.ID)
	input.Category = "PARKING"
	_, err = suite.feedbacks.CreateFeedback(suite.ctx, suite.actor(suite.member), input)
	suite.Require().True(errors.As(err, &verr))
	assert.Equal(suite.T(), "category", verr.Field)
}

func (suite *ServiceTestSuite) TestUpdateFeedback_MemberCannotSetStatus() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	feedback := testfixtures.CreateFeedback(suite.T(), suite.db, meeting, suite.member, suite.clock.Now())

	addressed := models.FeedbackStatusAddressed
	response := "Traité"
	updated, err := suite.feedbacks.UpdateFeedback(suite.ctx, suite.actor(suite.member), feedback.ID, UpdateFeedbackInput{
		Status:   &addressed,
		Response: &response,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.FeedbackStatusPending, updated.Status)
	assert.Nil(suite.T(), updated.Response)

	updated, err = suite.feedbacks.UpdateFeedback(suite.ctx, suite.actor(suite.president), feedback.ID, UpdateFeedbackInput{
		Status:   &addressed,
		Response: &response,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.FeedbackStatusAddressed, updated.Status)
	suite.Require().NotNil(updated.Response)
	assert.Equal(suite.T(), response, *updated.Response)
}

func (suite *ServiceTestSuite) TestUpdateFeedback_OtherMember() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	feedback := testfixtures.CreateFeedback(suite.T(), suite.db, meeting, suite.member, suite.clock.Now())
	other := testfixtures.CreateUser(suite.T(), suite.db, models.UserRoleMember)

	subject := "Autre sujet"
	_, err := suite.feedbacks.UpdateFeedback(suite.ctx, suite.actor(other), feedback.ID, UpdateFeedbackInput{Subject: &subject})
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	err = suite.feedbacks.DeleteFeedback(suite.ctx, suite.actor(other), feedback.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	_, err = suite.feedbacks.GetFeedback(suite.actor(other), feedback.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *ServiceTestSuite) TestDeleteFeedback_Deadline() {
	deadline := suite.clock.Now().Add(time.Hour)
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithFeedbackDeadline(deadline))
	mine := testfixtures.CreateFeedback(suite.T(), suite.db, meeting, suite.member, suite.clock.Now())
	another := testfixtures.CreateFeedback(suite.T(), suite.db, meeting, suite.member, suite.clock.Now())

	suite.Require().NoError(suite.feedbacks.DeleteFeedback(suite.ctx, suite.actor(suite.member), mine.ID))

	suite.clock.Advance(2 * time.Hour)
	err := suite.feedbacks.DeleteFeedback(suite.ctx, suite.actor(suite.member), another.ID)
	assert.ErrorIs(suite.T(), err, ErrDeadlinePassed)

	suite.Require().NoError(suite.feedbacks.DeleteFeedback(suite.ctx, suite.actor(suite.admin), another.ID))
}

func (suite *ServiceTestSuite) TestListFeedbacks_Visibility() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	other := testfixtures.CreateUser(suite.T(), suite.db, models.UserRoleMember)
	testfixtures.CreateFeedback(suite.T(), suite.db, meeting, suite.member, suite.clock.Now())
	testfixtures.CreateFeedback(suite.T(), suite.db, meeting, other, suite.clock.Now())

	mine, total, err := suite.feedbacks.ListFeedbacks(suite.actor(suite.member), ListFeedbacksInput{})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(mine, 1)
	assert.Equal(suite.T(), suite.member.ID, mine[0].SubmittedByID)

	all, total, err := suite.feedbacks.ListFeedbacks(suite.actor(suite.president), ListFeedbacksInput{MeetingID: &meeting.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), total)
	assert.Len(suite.T(), all, 2)
}
