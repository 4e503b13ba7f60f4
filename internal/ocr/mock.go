package ocr

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEngine 基于testify的OCR引擎模拟
type MockEngine struct {
	mock.Mock
}

// NewMockEngine 创建模拟引擎，测试结束时校验期望
func NewMockEngine(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEngine {
	m := &MockEngine{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEngine) Name() string {
	return "mock"
}

func (m *MockEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(Result), args.Error(1)
}

// MockRasterizer 基于testify的光栅化器模拟
type MockRasterizer struct {
	mock.Mock
}

// NewMockRasterizer 创建模拟光栅化器
func NewMockRasterizer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRasterizer {
	m := &MockRasterizer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRasterizer) Name() string {
	return "mock"
}

func (m *MockRasterizer) Rasterize(ctx context.Context, path string, pages []int, dpi int) ([]PageImage, error) {
	args := m.Called(ctx, path, pages, dpi)
	images, _ := args.Get(0).([]PageImage)
	return images, args.Error(1)
}
