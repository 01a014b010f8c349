package database

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetAccountById(id int) (User, error) {
	args := m.Called(id)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetFriendshipStatus(userA, userB int) (string, error) {
	args := m.Called(userA, userB)
	return args.String(0), args.Error(1)
}
func (m *MockChatRepository) GetAcceptedFriendIds(userId int) ([]int, error) {
	args := m.Called(userId)
	return args.Get(0).([]int), args.Error(1)
}
func (m *MockChatRepository) GetGroupMembership(groupId, userId int) (string, error) {
	args := m.Called(groupId, userId)
	return args.String(0), args.Error(1)
}
func (m *MockChatRepository) GetGroupMemberIds(groupId int) ([]int, error) {
	args := m.Called(groupId)
	return args.Get(0).([]int), args.Error(1)
}
func (m *MockChatRepository) GetMarketplacePostOwner(postId int) (int, error) {
	args := m.Called(postId)
	return args.Int(0), args.Error(1)
}
func (m *MockChatRepository) CreateMessage(msg Message) (int, error) {
	args := m.Called(msg)
	return args.Int(0), args.Error(1)
}
func (m *MockChatRepository) GetMessageById(id int) (Message, error) {
	args := m.Called(id)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) MarkMessageRead(id int, readAt time.Time) (bool, error) {
	args := m.Called(id, readAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockChatRepository) GetPrivateMessages(userA, userB, beforeId, limit int) ([]Message, error) {
	args := m.Called(userA, userB, beforeId, limit)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) GetGroupMessages(groupId, beforeId, limit int) ([]Message, error) {
	args := m.Called(groupId, beforeId, limit)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) ListConversations(userId int) ([]Conversation, error) {
	args := m.Called(userId)
	return args.Get(0).([]Conversation), args.Error(1)
}
