package services

import (
	"errors"
	"strings"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/testfixtures"
)

func (suite *ServiceTestSuite) TestSendConvocation_Scenario() {
	other := testfixtures.CreateUser(suite.T(), suite.db, models.UserRoleMember, testfixtures.WithName("Bernard"))
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president,
		testfixtures.WithParticipants(suite.member, other),
		testfixtures.WithAgenda("Budget des activités sociales"),
	)

	result, err := suite.convocation.Send(suite.ctx, suite.actor(suite.president), meeting.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 2, result.SentCount)
	assert.Empty(suite.T(), result.Errors)
	assert.True(suite.T(), suite.clock.Now().Equal(result.ConvocationSentAt))

	stored := suite.reloadMeeting(meeting.ID)
	assert.Equal(suite.T(), models.MeetingStatusConvocationSent, stored.Status)
	suite.Require().NotNil(stored.ConvocationSentAt)

	sent := suite.mailer.Sent()
	suite.Require().Len(sent, 2)
	for _, msg := range sent {
		assert.True(suite.T(), strings.HasPrefix(msg.Subject, "Convocation CSE Test"))
		assert.Contains(suite.T(), msg.Text, "Budget des activités sociales")
		assert.Contains(suite.T(), msg.HTML, "https://cse.example/meetings/")
		suite.Require().Len(msg.Attachments, 1)
		assert.Equal(suite.T(), "convocation-2025-03-10.pdf", msg.Attachments[0].Filename)
	}

	suite.clock.Advance(time.Hour)
	_, err = suite.convocation.Send(suite.ctx, suite.actor(suite.president), meeting.ID)
	var already *AlreadySentError
	suite.Require().True(errors.As(err, &already))
	assert.True(suite.T(), stored.ConvocationSentAt.Equal(already.SentAt))
	assert.Len(suite.T(), suite.mailer.Sent(), 2)
}

func (suite *ServiceTestSuite) TestSendConvocation_Preconditions() {
	noParticipants := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithAgenda("Point"))
	_, err := suite.convocation.Send(suite.ctx, suite.actor(suite.president), noParticipants.ID)
	assert.ErrorIs(suite.T(), err, ErrNoParticipants)

	noAgenda := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithParticipants(suite.member))
	_, err = suite.convocation.Send(suite.ctx, suite.actor(suite.president), noAgenda.ID)
	assert.ErrorIs(suite.T(), err, ErrNoAgenda)

	ready := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president,
		testfixtures.WithParticipants(suite.member), testfixtures.WithAgenda("Point"))
	_, err = suite.convocation.Send(suite.ctx, suite.actor(suite.member), ready.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	_, err = suite.convocation.Send(suite.ctx, suite.actor(suite.president), 4242)
	assert.ErrorIs(suite.T(), err, ErrMeetingNotFound)

	assert.Empty(suite.T(), suite.mailer.Sent())
}

func (suite *ServiceTestSuite) TestSendConvocation_PartialFailureKeepsMarker() {
	other := testfixtures.CreateUser(suite.T(), suite.db, models.UserRoleMember)
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president,
		testfixtures.WithParticipants(suite.member, other), testfixtures.WithAgenda("Point"))
	suite.mailer.FailFor(other.Email)

	result, err := suite.convocation.Send(suite.ctx, suite.actor(suite.admin), meeting.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, result.SentCount)
	suite.Require().Len(result.Errors, 1)
	assert.Equal(suite.T(), other.Email, result.Errors[0].Recipient)

	assert.NotNil(suite.T(), suite.reloadMeeting(meeting.ID).ConvocationSentAt)
}

func (suite *ServiceTestSuite) TestSendConvocation_TotalFailureReleasesMarker() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president,
		testfixtures.WithParticipants(suite.member), testfixtures.WithAgenda("Point"))
	suite.mailer.FailAll()

	_, err := suite.convocation.Send(suite.ctx, suite.actor(suite.admin), meeting.ID)
	var failed *DeliveryFailedError
	suite.Require().True(errors.As(err, &failed))
	assert.Len(suite.T(), failed.Errors, 1)

	stored := suite.reloadMeeting(meeting.ID)
	assert.Nil(suite.T(), stored.ConvocationSentAt)
	assert.Equal(suite.T(), models.MeetingStatusPlanned, stored.Status)
}

func (suite *ServiceTestSuite) TestSendConvocation_LocksAgenda() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president,
		testfixtures.WithParticipants(suite.member), testfixtures.WithAgenda("Point"))

	_, err := suite.convocation.Send(suite.ctx, suite.actor(suite.admin), meeting.ID)
	suite.Require().NoError(err)

	_, err = suite.agenda.AddItem(suite.ctx, suite.actor(suite.admin), meeting.ID, AgendaItemInput{Title: "Ajout tardif"})
	assert.ErrorIs(suite.T(), err, ErrAgendaLocked)
}

func (suite *ServiceTestSuite) TestRenderConvocationPDF() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president,
		testfixtures.WithParticipants(suite.member), testfixtures.WithAgenda("Point"))

	doc, err := suite.convocation.RenderPDF(suite.actor(suite.president), meeting.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), strings.HasPrefix(string(doc.Body), "%PDF-"))
	assert.Equal(suite.T(), "convocation-2025-03-10.pdf", doc.Filename)
	assert.Empty(suite.T(), suite.mailer.Sent())
}
