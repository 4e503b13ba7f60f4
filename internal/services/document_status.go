package services

import (
	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/sirupsen/logrus"
)

// documentStatus 记录单个文档在一次搜索中的状态变化
// 每个文档只在一个goroutine中处理，不需要加锁
type documentStatus struct {
	document string
	state    models.DocumentState
	trail    []models.DocumentState
	logger   *logrus.Logger
}

func newDocumentStatus(document string, logger *logrus.Logger) *documentStatus {
	return &documentStatus{
		document: document,
		state:    models.DocStatePending,
		trail:    []models.DocumentState{models.DocStatePending},
		logger:   logger,
	}
}

// advance 切换到下一个状态，无效转换只记录警告
func (s *documentStatus) advance(to models.DocumentState) {
	if err := models.ValidateStateTransition(s.state, to); err != nil {
		s.logger.WithFields(logrus.Fields{
			"document": s.document,
			"from":     s.state,
			"to":       to,
		}).Warn("Unexpected document state transition")
	}
	s.state = to
	s.trail = append(s.trail, to)
}

// finish 进入终态并输出完整的状态轨迹
func (s *documentStatus) finish() {
	s.advance(models.DocStateDone)
	s.logger.WithFields(logrus.Fields{
		"document": s.document,
		"trail":    s.trail,
	}).Debug("Document processed")
}

