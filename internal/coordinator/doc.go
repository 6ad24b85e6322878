// Package coordinator реализует координатор вывода и таймеров для группы
// процессов с рангами 0..N-1.
//
// Каждый процесс держит свой Coordinator поверх group.Runtime и получает:
//   - Log: строки с уровнем важности и рангом, только на ранге 0 или на
//     всех рангах строго по порядку номеров;
//   - TimerStart/TimerStop: вложенные именованные таймеры (стек LIFO);
//   - Abort: вывод сообщения и завершение всей группы.
//
// # Фильтрация
//
// Сообщение уровня s выводится, если s не менее срочен, чем maxSeverity, и
// visibility == AllRanks либо текущий ранг 0. Проверка выполняется до любой
// синхронизации: отфильтрованный вызов не трогает барьер.
//
// # Упорядоченный вывод
//
// При AllRanks каждый вызов Log выполняет size барьеров: на шаге i строку
// пишет ранг i, затем все ранги ждут барьер. Строки одного события выходят
// в порядке рангов и не перемешиваются.
//
// Протокол не несёт идентификатора события: все ранги обязаны вызывать
// Log/TimerStart/TimerStop одинаковое число раз в одинаковом порядке.
// Нарушение приводит к перемешанному выводу или deadlock, а не к ошибке.
//
// # Завершение
//
//	c := coordinator.New(rt, severity.Info, severity.AllRanks)
//	defer c.Close()
//
//	c.TimerStart(severity.Info, "solve")
//	c.Log(severity.Notice, "итерация сошлась")
//	c.TimerStop()
//
// Close останавливает незакрытые таймеры (с предупреждением) и только затем
// финализирует runtime группы.
//
// Coordinator не предназначен для конкурентного использования из нескольких
// горутин одного ранга.
package coordinator
