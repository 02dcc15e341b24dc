// Package storemock holds a gomock-shaped mock of store.Store, written by
// hand in the same form `mockgen` would emit (the teacher depends on
// go.uber.org/mock for exactly this purpose). Used where a test needs to
// assert on call counts or argument sequencing that storetest.MemStore's
// behavioral fake can't express cheaply, e.g. asserting a retry happened
// exactly once.
package storemock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// MockStore is a mock of the store.Store interface.
type MockStore struct {
	ctrl     *gomock.Controller
	recorder *MockStoreMockRecorder
}

// MockStoreMockRecorder is the mock recorder for MockStore.
type MockStoreMockRecorder struct {
	mock *MockStore
}

// NewMockStore builds a new mock instance bound to ctrl.
func NewMockStore(ctrl *gomock.Controller) *MockStore {
	m := &MockStore{ctrl: ctrl}
	m.recorder = &MockStoreMockRecorder{m}

	return m
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStore) EXPECT() *MockStoreMockRecorder {
	return m.recorder
}

func (m *MockStore) Put(ctx context.Context, item store.Item, cond *store.Condition) error {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "Put", ctx, item, cond)
	ret0, _ := ret[0].(error)

	return ret0
}

func (mr *MockStoreMockRecorder) Put(ctx, item, cond any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Put", reflect.TypeOf((*MockStore)(nil).Put), ctx, item, cond)
}

func (m *MockStore) Get(ctx context.Context, pk, sk string) (store.Item, error) {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "Get", ctx, pk, sk)
	ret0, _ := ret[0].(store.Item)
	ret1, _ := ret[1].(error)

	return ret0, ret1
}

func (mr *MockStoreMockRecorder) Get(ctx, pk, sk any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockStore)(nil).Get), ctx, pk, sk)
}

func (m *MockStore) Query(ctx context.Context, in store.QueryInput) ([]store.Item, string, error) {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "Query", ctx, in)
	ret0, _ := ret[0].([]store.Item)
	ret1, _ := ret[1].(string)
	ret2, _ := ret[2].(error)

	return ret0, ret1, ret2
}

func (mr *MockStoreMockRecorder) Query(ctx, in any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Query", reflect.TypeOf((*MockStore)(nil).Query), ctx, in)
}

func (m *MockStore) Update(ctx context.Context, pk, sk string, setOps map[string]any, cond *store.Condition) (store.Item, error) {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "Update", ctx, pk, sk, setOps, cond)
	ret0, _ := ret[0].(store.Item)
	ret1, _ := ret[1].(error)

	return ret0, ret1
}

func (mr *MockStoreMockRecorder) Update(ctx, pk, sk, setOps, cond any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockStore)(nil).Update), ctx, pk, sk, setOps, cond)
}

func (m *MockStore) TransactWrite(ctx context.Context, ops []store.WriteOp) error {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "TransactWrite", ctx, ops)
	ret0, _ := ret[0].(error)

	return ret0
}

func (mr *MockStoreMockRecorder) TransactWrite(ctx, ops any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TransactWrite", reflect.TypeOf((*MockStore)(nil).TransactWrite), ctx, ops)
}

func (m *MockStore) Delete(ctx context.Context, pk, sk string, cond *store.Condition) error {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "Delete", ctx, pk, sk, cond)
	ret0, _ := ret[0].(error)

	return ret0
}

func (mr *MockStoreMockRecorder) Delete(ctx, pk, sk, cond any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockStore)(nil).Delete), ctx, pk, sk, cond)
}
