package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// OperationsTotal 清单/任务操作计数，按操作名与结果区分。
	OperationsTotal *prometheus.CounterVec
	// AccessDeniedTotal 归属校验失败（静默拒绝）次数。
	AccessDeniedTotal *prometheus.CounterVec
	// AuthEventsTotal 注册/登录/注销事件计数。
	AuthEventsTotal *prometheus.CounterVec
	// RateLimitedTotal 被限流拒绝的请求数。
	RateLimitedTotal *prometheus.CounterVec
	// MailJobsTotal 邮件任务计数。
	MailJobsTotal *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics 注册全部指标，可重复调用。
func InitMetrics() {
	initOnce.Do(func() {
		OperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listable",
			Name:      "operations_total",
			Help:      "List and task operations by name and result.",
		}, []string{"operation", "result"})
		AccessDeniedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listable",
			Name:      "access_denied_total",
			Help:      "Operations denied by the ownership guard.",
		}, []string{"operation"})
		AuthEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listable",
			Name:      "auth_events_total",
			Help:      "Register, login and logout attempts by result.",
		}, []string{"event", "result"})
		RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listable",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"scope"})
		MailJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listable",
			Name:      "mail_jobs_total",
			Help:      "Welcome mail jobs by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			OperationsTotal,
			AccessDeniedTotal,
			AuthEventsTotal,
			RateLimitedTotal,
			MailJobsTotal,
		)
	})
}

// ObserveOperation 记录一次操作结果。
func ObserveOperation(operation string, err error) {
	if OperationsTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	OperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveDenied 记录一次归属校验拒绝。
func ObserveDenied(operation string) {
	if AccessDeniedTotal == nil {
		return
	}
	AccessDeniedTotal.WithLabelValues(operation).Inc()
}

// ObserveAuth 记录认证事件。
func ObserveAuth(event, result string) {
	if AuthEventsTotal == nil {
		return
	}
	AuthEventsTotal.WithLabelValues(event, result).Inc()
}

// ObserveRateLimited 记录限流拒绝。
func ObserveRateLimited(scope string) {
	if RateLimitedTotal == nil {
		return
	}
	RateLimitedTotal.WithLabelValues(scope).Inc()
}

// ObserveMail 记录邮件任务结果。
func ObserveMail(result string) {
	if MailJobsTotal == nil {
		return
	}
	MailJobsTotal.WithLabelValues(result).Inc()
}
