// Package aliyun implements ai.Adapter for Aliyun DashScope text generation,
// configured for machine translation (qwen-mt models).
//
// DashScope streams either incremental deltas or the full text generated so
// far, depending on model and account settings. The stream handler accepts
// both framings and de-duplicates repeated content so callers only ever see
// new text.
package aliyun
