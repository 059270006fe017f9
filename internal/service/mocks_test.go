package service

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"synacoding-backend/internal/gateway"
	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	os.Exit(m.Run())
}

// fakeTxRunner 直接以 nil 事务执行 fn，单元测试不需要真实事务
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindFirstChild(parentID int) (*model.User, error) {
	args := m.Called(parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListChildren(parentID int) ([]*model.User, error) {
	args := m.Called(parentID)
	return args.Get(0).([]*model.User), args.Error(1)
}

// MockCourseRepository 是 CourseRepository 接口的模拟实现
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) GetCourseByID(id int) (*model.Course, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseRepository) GetLectureByID(id int) (*model.Lecture, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lecture), args.Error(1)
}

func (m *MockCourseRepository) ListLecturesByCourse(courseID int) ([]*model.Lecture, error) {
	args := m.Called(courseID)
	return args.Get(0).([]*model.Lecture), args.Error(1)
}

func (m *MockCourseRepository) CountLecturesByCourse(courseID int) (int, error) {
	args := m.Called(courseID)
	return args.Int(0), args.Error(1)
}

// MockOrderRepository 是 OrderRepository 接口的模拟实现
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(order *model.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(id int) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrdersByUser(userID int) ([]*model.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) CompleteOrder(tx *sql.Tx, orderID int) (bool, error) {
	args := m.Called(tx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CancelOrder(tx *sql.Tx, orderID int) (bool, error) {
	args := m.Called(tx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CreatePayment(tx *sql.Tx, payment *model.Payment) error {
	args := m.Called(tx, payment)
	return args.Error(0)
}

func (m *MockOrderRepository) GetPaymentByID(id int) (*model.Payment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockOrderRepository) GetPaymentByOrderID(orderID int) (*model.Payment, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockOrderRepository) CreateRefund(tx *sql.Tx, refund *model.Refund) error {
	args := m.Called(tx, refund)
	return args.Error(0)
}

func (m *MockOrderRepository) GetRefundByPaymentID(paymentID int) (*model.Refund, error) {
	args := m.Called(paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Refund), args.Error(1)
}

// MockRewardRepository 是 RewardRepository 接口的模拟实现
type MockRewardRepository struct {
	mock.Mock
}

func (m *MockRewardRepository) CreateReward(reward *model.Reward) error {
	args := m.Called(reward)
	return args.Error(0)
}

func (m *MockRewardRepository) GetRewardByID(id int) (*model.Reward, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reward), args.Error(1)
}

func (m *MockRewardRepository) ListRewardsByUser(userID int) ([]*model.Reward, error) {
	args := m.Called(userID)
	return args.Get(0).([]*model.Reward), args.Error(1)
}

func (m *MockRewardRepository) GetRewardForUpdate(tx *sql.Tx, id int) (*model.Reward, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reward), args.Error(1)
}

func (m *MockRewardRepository) MarkRewardUsed(tx *sql.Tx, id int, usedAt time.Time) error {
	args := m.Called(tx, id, usedAt)
	return args.Error(0)
}

func (m *MockRewardRepository) DeleteExpiredUnused(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

// MockEnrollmentRepository 是 EnrollmentRepository 接口的模拟实现
type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) GetEnrollment(studentID, courseID int) (*model.Enrollment, error) {
	args := m.Called(studentID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) GetEnrollmentTx(tx *sql.Tx, studentID, courseID int) (*model.Enrollment, error) {
	args := m.Called(tx, studentID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) CreateEnrollment(tx *sql.Tx, enrollment *model.Enrollment) error {
	args := m.Called(tx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) UpdateEnrollmentProgress(tx *sql.Tx, enrollment *model.Enrollment) error {
	args := m.Called(tx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) UpdateEnrollmentStatus(tx *sql.Tx, enrollmentID int, status string) error {
	args := m.Called(tx, enrollmentID, status)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) ListEnrollmentsByStudent(studentID int) ([]*model.Enrollment, error) {
	args := m.Called(studentID)
	return args.Get(0).([]*model.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) GetLectureProgress(studentID, lectureID int) (*model.LectureProgress, error) {
	args := m.Called(studentID, lectureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LectureProgress), args.Error(1)
}

func (m *MockEnrollmentRepository) UpsertLectureProgress(tx *sql.Tx, progress *model.LectureProgress) error {
	args := m.Called(tx, progress)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) CountCompletedLectures(tx *sql.Tx, studentID, courseID int) (int, error) {
	args := m.Called(tx, studentID, courseID)
	return args.Int(0), args.Error(1)
}

func (m *MockEnrollmentRepository) ListLectureProgressByCourse(studentID, courseID int) ([]*model.LectureProgress, error) {
	args := m.Called(studentID, courseID)
	return args.Get(0).([]*model.LectureProgress), args.Error(1)
}

// MockPaymentGateway 是 PaymentGateway 接口的模拟实现
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(orderNumber string, amount float64, method string) (*gateway.ChargeResult, error) {
	args := m.Called(orderNumber, amount, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ChargeResult), args.Error(1)
}

// MockNotifier 是 Notifier 接口的模拟实现
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(userID int, message, link string) {
	m.Called(userID, message, link)
}

// MockProgressApplier 是 ProgressApplier 接口的模拟实现
type MockProgressApplier struct {
	mock.Mock
}

func (m *MockProgressApplier) ApplyProgress(tx *sql.Tx, enrollment *model.Enrollment, rate float64) error {
	args := m.Called(tx, enrollment, rate)
	return args.Error(0)
}
