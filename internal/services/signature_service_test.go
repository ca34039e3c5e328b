package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/testfixtures"
)

func (suite *ServiceTestSuite) pendingMinute() *models.MeetingMinute {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	return testfixtures.CreateMinute(suite.T(), suite.db, meeting, suite.president, models.MinuteStatusPendingSignature)
}

func (suite *ServiceTestSuite) TestSign_Twice() {
	minute := suite.pendingMinute()

	first, err := suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: minute.ID})
	suite.Require().NoError(err)

	_, err = suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: minute.ID})
	var signed *AlreadySignedError
	suite.Require().True(errors.As(err, &signed))
	assert.Equal(suite.T(), first.Signature.ID, signed.SignatureID)
	assert.True(suite.T(), first.Signature.SignedAt.Equal(signed.SignedAt))

	var count int64
	suite.db.Model(&models.Signature{}).Where("minute_id = ? AND user_id = ?", minute.ID, suite.admin.ID).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *ServiceTestSuite) TestSign_QuorumBoundary() {
	third := testfixtures.CreateUser(suite.T(), suite.db, models.UserRoleAdmin)
	minute := suite.pendingMinute()

	for _, signer := range []*models.User{suite.admin, suite.president} {
		res, err := suite.signatures.Sign(suite.ctx, suite.actor(signer), SignInput{MinuteID: minute.ID})
		suite.Require().NoError(err)
		assert.Equal(suite.T(), models.MinuteStatusPendingSignature, res.MinuteStatus)
	}
	assert.Equal(suite.T(), models.MinuteStatusPendingSignature, suite.reloadMinute(minute.ID).Status)

	res, err := suite.signatures.Sign(suite.ctx, suite.actor(third), SignInput{MinuteID: minute.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MinuteStatusSigned, res.MinuteStatus)
	assert.Equal(suite.T(), models.SignatureProgress{Count: 3, Required: 3, Complete: true}, res.Progress)
}

func (suite *ServiceTestSuite) TestSign_QuorumFollowsDeactivation() {
	minute := suite.pendingMinute()

	_, err := suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: minute.ID})
	suite.Require().NoError(err)

	extra := testfixtures.CreateUser(suite.T(), suite.db, models.UserRolePresident)
	suite.Require().NoError(suite.users.DeactivateUser(suite.ctx, suite.actor(suite.admin), extra.ID))

	progress, err := suite.signatures.Progress(minute.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), progress.Required)

	res, err := suite.signatures.Sign(suite.ctx, suite.actor(suite.president), SignInput{MinuteID: minute.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MinuteStatusSigned, res.MinuteStatus)
}

func (suite *ServiceTestSuite) TestSign_NotSignable() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	draft := testfixtures.CreateMinute(suite.T(), suite.db, meeting, suite.president, models.MinuteStatusDraft)

	_, err := suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: draft.ID})
	assert.ErrorIs(suite.T(), err, ErrNotSignable)

	pending := suite.pendingMinute()
	_, err = suite.signatures.Sign(suite.ctx, suite.actor(suite.member), SignInput{MinuteID: pending.ID})
	assert.ErrorIs(suite.T(), err, ErrNotSignable)
	assert.ErrorIs(suite.T(), err, ErrSignerNotManager)
}

func (suite *ServiceTestSuite) TestSign_CommentsLimit() {
	minute := suite.pendingMinute()

	long := strings.Repeat("é", 501)
	_, err := suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: minute.ID, Comments: &long})
	assert.ErrorIs(suite.T(), err, ErrValidation)

	ok := strings.Repeat("é", 500)
	res, err := suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: minute.ID, Comments: &ok})
	suite.Require().NoError(err)
	suite.Require().NotNil(res.Signature.Comments)
	assert.Equal(suite.T(), ok, *res.Signature.Comments)
}

func (suite *ServiceTestSuite) TestSign_Concurrent() {
	minute := suite.pendingMinute()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: minute.ID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(suite.T(), err, ErrAlreadySigned)
	}
	assert.Equal(suite.T(), 1, succeeded)
}

func (suite *ServiceTestSuite) TestUnsign() {
	minute := suite.pendingMinute()
	own := testfixtures.CreateSignature(suite.T(), suite.db, minute, suite.president, suite.clock.Now())

	err := suite.signatures.Unsign(suite.ctx, suite.actor(suite.member), own.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	suite.Require().NoError(suite.signatures.Unsign(suite.ctx, suite.actor(suite.president), own.ID))

	again := testfixtures.CreateSignature(suite.T(), suite.db, minute, suite.president, suite.clock.Now())
	suite.Require().NoError(suite.signatures.Unsign(suite.ctx, suite.actor(suite.admin), again.ID))

	err = suite.signatures.Unsign(suite.ctx, suite.actor(suite.admin), again.ID)
	assert.ErrorIs(suite.T(), err, ErrSignatureNotFound)
}

func (suite *ServiceTestSuite) TestUnsign_AfterPromotion() {
	minute := suite.pendingMinute()

	first, err := suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: minute.ID})
	suite.Require().NoError(err)
	_, err = suite.signatures.Sign(suite.ctx, suite.actor(suite.president), SignInput{MinuteID: minute.ID})
	suite.Require().NoError(err)

	err = suite.signatures.Unsign(suite.ctx, suite.actor(suite.admin), first.Signature.ID)
	assert.ErrorIs(suite.T(), err, ErrNotRemovable)
	assert.Equal(suite.T(), models.MinuteStatusSigned, suite.reloadMinute(minute.ID).Status)
}

func (suite *ServiceTestSuite) TestListSignatures() {
	minute := suite.pendingMinute()
	testfixtures.CreateSignature(suite.T(), suite.db, minute, suite.admin, suite.clock.Now())
	testfixtures.CreateSignature(suite.T(), suite.db, minute, suite.president, suite.clock.Advance(time.Second))

	all, err := suite.signatures.ListSignatures(ListSignaturesInput{MinuteID: &minute.ID})
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	assert.Equal(suite.T(), suite.admin.ID, all[0].UserID)
	suite.Require().NotNil(all[0].User)

	mine, err := suite.signatures.ListSignatures(ListSignaturesInput{UserID: &suite.president.ID})
	suite.Require().NoError(err)
	suite.Require().Len(mine, 1)
	assert.Equal(suite.T(), suite.president.ID, mine[0].UserID)
}
