// Package fuzztests houses Go fuzz harnesses that exercise the whole
// per-file path (source -> tree-sitter front-end -> checker -> fixes). Its
// goal is to smoke test robustness and guard against panics or broken
// line bookkeeping on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через FileSet, phpparse, check и
// fix.ApplyLines, проверяя инварианты из testkit.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
