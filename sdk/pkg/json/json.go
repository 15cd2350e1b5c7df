package json

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON 统一的 jsoniter 配置实例
// 使用 ConfigCompatibleWithStandardLibrary 确保与标准库完全兼容，
// 同时获得更高的性能
//
// jxt-latency-probe 所有需要 JSON 序列化的组件都使用这个配置，包括：
// - probe: Marker 标记记录的编解码
// - examples: 演示生产者的消息构造
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal 序列化对象为 JSON 字节数组
// 兼容标准库 json.Marshal 接口
func Marshal(v interface{}) ([]byte, error) {
	return JSON.Marshal(v)
}

// Unmarshal 从 JSON 字节数组反序列化对象
// 兼容标准库 json.Unmarshal 接口
func Unmarshal(data []byte, v interface{}) error {
	return JSON.Unmarshal(data, v)
}

// MarshalToString 将对象序列化为 JSON 字符串
// 避免字节数组到字符串的内存拷贝
func MarshalToString(v interface{}) (string, error) {
	return JSON.MarshalToString(v)
}

// UnmarshalFromString 从 JSON 字符串反序列化对象
// 避免字符串到字节数组的内存拷贝
func UnmarshalFromString(str string, v interface{}) error {
	return JSON.UnmarshalFromString(str, v)
}

// RawMessage jsoniter 兼容的 RawMessage 类型
// 与标准库 json.RawMessage 完全兼容，适用于延迟解析或透传 JSON 数据的场景
type RawMessage = jsoniter.RawMessage
